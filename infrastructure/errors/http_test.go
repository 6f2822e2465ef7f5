package errors_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/jonesrussell/north-cloud/link-review/infrastructure/errors"
)

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantNil bool
		wantMsg string
	}{
		{name: "ok", status: http.StatusOK, wantNil: true},
		{name: "no content", status: http.StatusNoContent, wantNil: true},
		{name: "json error", status: http.StatusBadGateway, body: `{"error":"db down"}`, wantMsg: "db down"},
		{name: "json detail", status: http.StatusUnprocessableEntity, body: `{"detail":"bad user"}`, wantMsg: "bad user"},
		{name: "plain body", status: http.StatusInternalServerError, body: "  boom\n", wantMsg: "boom"},
		{name: "empty body", status: http.StatusServiceUnavailable, wantMsg: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := infraerrors.FromResponse(tt.status, []byte(tt.body))
			if tt.wantNil {
				assert.NoError(t, err)
				return
			}
			var httpErr *infraerrors.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestFromResponse_TruncatesLongBodies(t *testing.T) {
	err := infraerrors.FromResponse(http.StatusBadGateway, []byte(strings.Repeat("x", 1000)))

	var httpErr *infraerrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Len(t, []rune(httpErr.Message), 201)
}

func TestStatusCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("fetch: %w", infraerrors.FromResponse(http.StatusTeapot, nil))

	code, ok := infraerrors.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusTeapot, code)

	_, ok = infraerrors.StatusCode(fmt.Errorf("plain"))
	assert.False(t, ok)
}
