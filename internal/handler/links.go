// Package handler exposes the review service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/review"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

//go:generate mockgen -source=links.go -destination=../../testutils/mocks/handler/mock_review_service.go -package=handlermocks

// ReviewService is the query and command surface the handlers call.
type ReviewService interface {
	ListRecords(ctx context.Context) ([]domain.LinkRecord, error)
	GetRecord(ctx context.Context, id int64) (domain.LinkRecord, error)
	ApplyPatch(ctx context.Context, id int64, p domain.Patch) (domain.LinkRecord, error)
	GetHistory(ctx context.Context, id int64) ([]domain.HistoryEvent, error)
	AppendHistoryNote(ctx context.Context, id int64, text string) (domain.HistoryEvent, error)
	Ask(ctx context.Context, id int64, question string) (string, error)
}

// LinkHandler serves link records, their history and the assistant.
type LinkHandler struct {
	svc ReviewService
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(svc ReviewService) *LinkHandler {
	return &LinkHandler{svc: svc}
}

// List handles GET /links.
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.svc.ListRecords(c.Request.Context())
	if err != nil {
		respondError(c, "list", err)
		return
	}
	if links == nil {
		links = []domain.LinkRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"links": links,
		"count": len(links),
	})
}

// Get handles GET /links/:id.
func (h *LinkHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, "get", err)
		return
	}
	rec, err := h.svc.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Patch handles PATCH /links/:id with a sparse patch object as the body.
func (h *LinkHandler) Patch(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, "patch", err)
		return
	}
	body, err := readBody(c)
	if err != nil {
		respondError(c, "patch", err)
		return
	}
	p, err := domain.DecodePatch(body)
	if err != nil {
		respondError(c, "patch", err)
		return
	}

	rec, err := h.svc.ApplyPatch(withActor(c), id, p)
	if err != nil {
		respondError(c, "patch", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type updateEnvelope struct {
	ID    json.RawMessage `json:"id"`
	Patch json.RawMessage `json:"patch"`
}

// Update handles POST /update, the {id, patch} envelope sent by the
// legacy review UI.
func (h *LinkHandler) Update(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, "update", err)
		return
	}

	var env updateEnvelope
	if err = json.Unmarshal(body, &env); err != nil {
		respondError(c, "update", domain.NewValidationError("body", "must be a JSON object with id and patch"))
		return
	}
	id, err := parseRawID(env.ID)
	if err != nil {
		respondError(c, "update", err)
		return
	}
	raw := env.Patch
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	p, err := domain.DecodePatch(raw)
	if err != nil {
		respondError(c, "update", err)
		return
	}

	if _, err = h.svc.ApplyPatch(withActor(c), id, p); err != nil {
		respondError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// History handles GET /links/:id/history.
func (h *LinkHandler) History(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, "history", err)
		return
	}
	h.history(c, id)
}

// LegacyHistory handles GET /history?id=.
func (h *LinkHandler) LegacyHistory(c *gin.Context) {
	id, err := parseID(c.Query("id"))
	if err != nil {
		respondError(c, "history", err)
		return
	}
	h.history(c, id)
}

func (h *LinkHandler) history(c *gin.Context, id int64) {
	events, err := h.svc.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type noteRequest struct {
	ID   json.RawMessage `json:"id"`
	Text string          `json:"text"`
}

// AddNote handles POST /links/:id/history.
func (h *LinkHandler) AddNote(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, "note", err)
		return
	}
	var req noteRequest
	if err = bindJSON(c, &req); err != nil {
		respondError(c, "note", err)
		return
	}
	h.addNote(c, id, req.Text)
}

// LegacyAddNote handles POST /history with {id, text}.
func (h *LinkHandler) LegacyAddNote(c *gin.Context) {
	var req noteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, "note", err)
		return
	}
	id, err := parseRawID(req.ID)
	if err != nil {
		respondError(c, "note", err)
		return
	}
	h.addNote(c, id, req.Text)
}

func (h *LinkHandler) addNote(c *gin.Context, id int64, text string) {
	event, err := h.svc.AppendHistoryNote(withActor(c), id, text)
	if err != nil {
		respondError(c, "note", err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /links/:id/ask.
func (h *LinkHandler) Ask(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, "ask", err)
		return
	}
	var req askRequest
	if err = bindJSON(c, &req); err != nil {
		respondError(c, "ask", err)
		return
	}

	reply, err := h.svc.Ask(c.Request.Context(), id, req.Question)
	if err != nil {
		respondError(c, "ask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func withActor(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if sub := jwt.Subject(c); sub != "" {
		ctx = review.WithActor(ctx, sub)
	}
	return ctx
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", fmt.Sprintf("%q is not a positive integer", raw))
	}
	return id, nil
}

// parseRawID accepts a JSON number or a numeric string.
func parseRawID(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return parseID(strconv.FormatInt(n, 10))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseID(s)
	}
	return 0, domain.NewValidationError("id", "is required and must be a positive integer")
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func bindJSON(c *gin.Context, v any) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, v); err != nil {
		return domain.NewValidationError("body", "must be a JSON object")
	}
	return nil
}
