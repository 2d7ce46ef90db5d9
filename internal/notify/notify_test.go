package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gaia-lore/internal/apperror"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seenRequest is what the fake notification service recorded.
type seenRequest struct {
	path   string
	header http.Header
	body   payload
}

// newTestNotifier points a Notifier at an httptest server answering with
// status and recording the last request it saw.
func newTestNotifier(t *testing.T, status int) (*Notifier, *seenRequest) {
	t.Helper()
	seen := &seenRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path = r.URL.Path
		seen.header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&seen.body)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	n := New(Config{URL: srv.URL + "/", Key: "forge-key"}, discardLogger())
	return n, seen
}

// =========================================================================
// SENDING
// =========================================================================

func TestNotifyOwner_Success(t *testing.T) {
	n, seen := newTestNotifier(t, http.StatusOK)

	ok, err := n.NotifyOwner(context.Background(), "  New glitch  ", " Two birthdays for Sid ")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, sendNotificationPath, seen.path)
	assert.Equal(t, "Bearer forge-key", seen.header.Get("Authorization"))
	assert.Equal(t, "1", seen.header.Get("Connect-Protocol-Version"))
	assert.Equal(t, "application/json", seen.header.Get("Content-Type"))
	assert.Equal(t, "New glitch", seen.body.Title)
	assert.Equal(t, "Two birthdays for Sid", seen.body.Content)
}

func TestNotifyOwner_Non2xxIsSoftFailure(t *testing.T) {
	n, _ := newTestNotifier(t, http.StatusBadGateway)

	ok, err := n.NotifyOwner(context.Background(), "title", "content")
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingClient struct{}

func (failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestNotifyOwner_TransportErrorIsSoftFailure(t *testing.T) {
	n := New(Config{URL: "http://notify.invalid", Key: "k", Client: failingClient{}}, discardLogger())

	ok, err := n.NotifyOwner(context.Background(), "title", "content")
	require.NoError(t, err)
	assert.False(t, ok)
}

// =========================================================================
// CONFIGURATION AND VALIDATION
// =========================================================================

func TestNotifyOwner_Unconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no url", cfg: Config{Key: "k"}},
		{name: "no key", cfg: Config{URL: "http://notify.invalid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.cfg, discardLogger())
			assert.False(t, n.Configured())

			_, err := n.NotifyOwner(context.Background(), "title", "content")
			assert.ErrorIs(t, err, apperror.ErrInternal)
		})
	}
}

func TestNotifyOwner_Validation(t *testing.T) {
	n := New(Config{URL: "http://notify.invalid", Key: "k", Client: failingClient{}}, discardLogger())

	tests := []struct {
		name, title, content, field string
	}{
		{"empty title", "  ", "content", "title"},
		{"empty content", "title", "", "content"},
		{"title too long", strings.Repeat("a", TitleMaxLength+1), "content", "title"},
		{"content too long", "title", strings.Repeat("a", ContentMaxLength+1), "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.NotifyOwner(context.Background(), tt.title, tt.content)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestNotifyOwner_LimitsCountRunes(t *testing.T) {
	n, _ := newTestNotifier(t, http.StatusOK)

	// 1200 two-byte runes are within the limit
	ok, err := n.NotifyOwner(context.Background(), strings.Repeat("é", TitleMaxLength), "content")
	require.NoError(t, err)
	assert.True(t, ok)
}
