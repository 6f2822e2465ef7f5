package review

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/store"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

// MaxNoteLength bounds free-text history notes, in runes.
const MaxNoteLength = 2000

// Operation names used for metrics and spans.
const (
	opApplyPatch = "apply_patch"
	opAppendNote = "append_note"
	opAsk        = "ask"
)

// RecordSource supplies the current base dataset.
type RecordSource interface {
	Fetch(ctx context.Context) ([]domain.LinkRecord, error)
	Name() string
}

// Assistant answers analyst questions about a record.
type Assistant interface {
	Ask(ctx context.Context, question string, snapshot domain.Snapshot) (string, error)
}

// Publisher receives committed audit events. It is called while the record's
// lock is held and must not block.
type Publisher interface {
	Publish(ctx context.Context, events []domain.AuditEvent)
}

// Service is the query and command surface over merged link records.
type Service struct {
	source    RecordSource
	overrides store.Overrides
	history   store.History
	assistant Assistant
	publisher Publisher
	telemetry *telemetry.Provider
	log       infralogger.Logger
	now       func() time.Time
	locks     *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithAssistant enables Ask.
func WithAssistant(a Assistant) Option {
	return func(s *Service) { s.assistant = a }
}

// WithPublisher fans committed audit events out to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTelemetry records metrics and spans on p.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(s *Service) { s.telemetry = p }
}

// WithClock replaces time.Now for lastModifiedDate stamping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service. overrides and history are shared by every
// request for the process lifetime.
func NewService(
	source RecordSource,
	overrides store.Overrides,
	history store.History,
	log infralogger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		source:    source,
		overrides: overrides,
		history:   history,
		log:       log,
		now:       time.Now,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type actorKey struct{}

// WithActor attaches the analyst identity recorded on history events.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// ListRecords returns every base record merged with its overrides, in source order.
func (s *Service) ListRecords(ctx context.Context) ([]domain.LinkRecord, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "review.ListRecords")
	defer span.End()

	base, err := s.fetch(ctx)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	out := make([]domain.LinkRecord, len(base))
	for i, rec := range base {
		out[i] = s.overrides.Get(rec.ID).Apply(rec)
	}
	span.SetAttributes(attribute.Int("records", len(out)))
	return out, nil
}

// GetRecord returns one merged record, or ErrNotFound when the current base
// dataset lacks id, whatever overrides exist for it.
func (s *Service) GetRecord(ctx context.Context, id int64) (domain.LinkRecord, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "review.GetRecord", attribute.Int64("link.id", id))
	defer span.End()

	if err := validateID(id); err != nil {
		return domain.LinkRecord{}, err
	}

	base, found, err := s.lookup(ctx, id)
	if err != nil {
		recordErr(span, err)
		return domain.LinkRecord{}, err
	}
	if !found {
		return domain.LinkRecord{}, fmt.Errorf("link %d: %w", id, domain.ErrNotFound)
	}
	return s.overrides.Get(id).Apply(base), nil
}

// ApplyPatch validates p, then stores it and appends its audit events as one
// unit under id's lock. Writes to ids the source does not know are accepted;
// they surface once the source returns the id. The merged result is returned.
func (s *Service) ApplyPatch(ctx context.Context, id int64, p domain.Patch) (domain.LinkRecord, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "review.ApplyPatch",
		attribute.Int64("link.id", id),
		attribute.StringSlice("patch.fields", p.Fields()),
	)
	defer span.End()

	if err := validateID(id); err != nil {
		s.telemetry.RecordCommand(opApplyPatch, telemetry.OutcomeRejected)
		return domain.LinkRecord{}, err
	}
	if err := ValidatePatch(p); err != nil {
		s.telemetry.RecordCommand(opApplyPatch, telemetry.OutcomeRejected)
		return domain.LinkRecord{}, err
	}

	base, found, err := s.lookup(ctx, id)
	if err != nil {
		s.telemetry.RecordCommand(opApplyPatch, telemetry.OutcomeFailed)
		recordErr(span, err)
		return domain.LinkRecord{}, err
	}
	if !found {
		base = domain.LinkRecord{ID: id, Status: domain.StatusUnverified}
	}

	actor := actorFrom(ctx)

	unlock := s.locks.Lock(id)
	current := s.overrides.Get(id).Apply(base)
	tr := Evaluate(current, p, domain.DateOf(s.now()))
	stored := s.overrides.Apply(id, tr.Patch)
	audit := make([]domain.AuditEvent, 0, len(tr.Entries))
	for _, e := range tr.Entries {
		audit = append(audit, domain.AuditEvent{Kind: e.Kind, HistoryEvent: s.history.Append(id, e.Text, actor)})
	}
	// Publishing under the lock keeps sink order equal to history order.
	s.emit(ctx, audit)
	unlock()

	s.telemetry.RecordCommand(opApplyPatch, telemetry.OutcomeAccepted)
	s.telemetry.SetOverriddenRecords(s.overrides.Len())

	s.logger(ctx).Info("Patch applied",
		infralogger.Int64("link_id", id),
		infralogger.Strings("fields", p.Fields()),
		infralogger.Int("audit_events", len(audit)),
		infralogger.Bool("known_to_source", found),
	)

	return stored.Apply(base), nil
}

// GetHistory returns id's audit trail, seeding the genesis event on first access.
func (s *Service) GetHistory(ctx context.Context, id int64) ([]domain.HistoryEvent, error) {
	_, span := s.telemetry.StartSpan(ctx, "review.GetHistory", attribute.Int64("link.id", id))
	defer span.End()

	if err := validateID(id); err != nil {
		return nil, err
	}
	s.history.EnsureInitialized(id)
	return s.history.List(id), nil
}

// AppendHistoryNote appends free text to id's history.
func (s *Service) AppendHistoryNote(ctx context.Context, id int64, text string) (domain.HistoryEvent, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "review.AppendHistoryNote", attribute.Int64("link.id", id))
	defer span.End()

	text = strings.TrimSpace(text)
	if err := validateID(id); err != nil {
		s.telemetry.RecordCommand(opAppendNote, telemetry.OutcomeRejected)
		return domain.HistoryEvent{}, err
	}
	if text == "" {
		s.telemetry.RecordCommand(opAppendNote, telemetry.OutcomeRejected)
		return domain.HistoryEvent{}, domain.NewValidationError("text", "must not be blank")
	}
	if utf8.RuneCountInString(text) > MaxNoteLength {
		s.telemetry.RecordCommand(opAppendNote, telemetry.OutcomeRejected)
		return domain.HistoryEvent{}, domain.NewValidationError("text", fmt.Sprintf("must be at most %d characters", MaxNoteLength))
	}

	unlock := s.locks.Lock(id)
	event := s.history.Append(id, text, actorFrom(ctx))
	s.emit(ctx, []domain.AuditEvent{{Kind: domain.AuditNote, HistoryEvent: event}})
	unlock()

	s.telemetry.RecordCommand(opAppendNote, telemetry.OutcomeAccepted)
	return event, nil
}

// Ask forwards question and a snapshot of id's merged record to the
// assistant. It never writes to overrides or history.
func (s *Service) Ask(ctx context.Context, id int64, question string) (string, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "review.Ask", attribute.Int64("link.id", id))
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		s.telemetry.RecordAssistant(telemetry.OutcomeRejected)
		return "", domain.NewValidationError("question", "must not be blank")
	}
	if s.assistant == nil {
		s.telemetry.RecordAssistant(telemetry.OutcomeFailed)
		return "", fmt.Errorf("%w: not configured", domain.ErrAssistantUnavailable)
	}

	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		s.telemetry.RecordAssistant(telemetry.OutcomeRejected)
		return "", err
	}

	reply, err := s.assistant.Ask(ctx, question, rec.Snapshot())
	if err != nil {
		s.telemetry.RecordAssistant(telemetry.OutcomeFailed)
		recordErr(span, err)
		return "", fmt.Errorf("%w: %w", domain.ErrAssistantUnavailable, err)
	}

	s.telemetry.RecordAssistant(telemetry.OutcomeAccepted)
	return reply, nil
}

// CheckSource fetches once so health checks see source reachability.
func (s *Service) CheckSource(ctx context.Context) error {
	_, err := s.fetch(ctx)
	return err
}

func (s *Service) fetch(ctx context.Context) ([]domain.LinkRecord, error) {
	start := time.Now()
	records, err := s.source.Fetch(ctx)
	s.telemetry.RecordSourceFetch(s.source.Name(), time.Since(start), len(records), err)
	if err != nil {
		s.logger(ctx).Warn("Record source fetch failed",
			infralogger.String("source", s.source.Name()),
			infralogger.Error(err),
		)
		return nil, domain.UpstreamError(s.source.Name(), err)
	}
	return records, nil
}

func (s *Service) lookup(ctx context.Context, id int64) (domain.LinkRecord, bool, error) {
	records, err := s.fetch(ctx)
	if err != nil {
		return domain.LinkRecord{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return domain.LinkRecord{}, false, nil
}

// logger prefers the request-scoped logger and falls back to the one the
// service was built with.
func (s *Service) logger(ctx context.Context) infralogger.Logger {
	return infralogger.FromContextOr(ctx, s.log)
}

func (s *Service) emit(ctx context.Context, events []domain.AuditEvent) {
	for _, e := range events {
		s.telemetry.RecordAuditEvent(string(e.Kind))
	}
	if s.publisher == nil || len(events) == 0 {
		return
	}
	s.publisher.Publish(context.WithoutCancel(ctx), events)
}

func validateID(id int64) error {
	if id <= 0 {
		return domain.NewValidationError("id", "must be a positive integer")
	}
	return nil
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
