// Package notify sends operator notifications to the project owner through
// the hosting platform's notification service.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/gaia-lore/internal/apperror"
)

const (
	TitleMaxLength   = 1200
	ContentMaxLength = 20000

	sendNotificationPath = "/webdevtoken.v1.WebDevService/SendNotification"
)

// HTTPClient is satisfied by *http.Client; tests substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Notifier. Empty URL or Key leaves the notifier
// constructed but failing every send with an internal error.
type Config struct {
	URL     string
	Key     string
	Timeout time.Duration
	Client  HTTPClient
}

// Notifier posts title/content messages to the notification service.
type Notifier struct {
	url    string
	key    string
	client HTTPClient
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Notifier {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Notifier{
		url:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		key:    strings.TrimSpace(cfg.Key),
		client: client,
		logger: logger,
	}
}

// Configured reports whether both the endpoint and the key are set.
func (n *Notifier) Configured() bool {
	return n.url != "" && n.key != ""
}

type payload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NotifyOwner sends a notification. It returns (false, nil) when the service
// answers with a non-2xx status or cannot be reached; those are logged and
// treated as soft failures. Invalid input and a missing configuration are
// returned as errors.
func (n *Notifier) NotifyOwner(ctx context.Context, title, content string) (bool, error) {
	p, err := validatePayload(title, content)
	if err != nil {
		return false, err
	}
	if n.url == "" {
		return false, apperror.Internal("Notification service URL is not configured.")
	}
	if n.key == "" {
		return false, apperror.Internal("Notification service API key is not configured.")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("notify: encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url+sendNotificationPath, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("notify: building request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("authorization", "Bearer "+n.key)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("connect-protocol-version", "1")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("owner notification failed", slog.String("error", err.Error()))
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		n.logger.Warn("owner notification rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(detail)),
		)
		return false, nil
	}

	n.logger.Info("owner notified", slog.String("title", p.Title))
	return true, nil
}

func validatePayload(title, content string) (payload, error) {
	p := payload{Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)}

	if p.Title == "" {
		return p, apperror.ValidationFailed("title", "Notification title is required.")
	}
	if p.Content == "" {
		return p, apperror.ValidationFailed("content", "Notification content is required.")
	}
	if utf8.RuneCountInString(p.Title) > TitleMaxLength {
		return p, apperror.ValidationFailed("title",
			fmt.Sprintf("Notification title must be at most %d characters.", TitleMaxLength))
	}
	if utf8.RuneCountInString(p.Content) > ContentMaxLength {
		return p, apperror.ValidationFailed("content",
			fmt.Sprintf("Notification content must be at most %d characters.", ContentMaxLength))
	}
	return p, nil
}
