package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hazemkhaled/text-extractor/internal/models"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

const (
	DefaultTimeout = 15 * time.Second
	DefaultTextCap = 20000
	// SecretHeader authenticates us to the callback receiver.
	SecretHeader = "X-Callback-Secret"
)

// Payload is the wire shape of the callback body.
type Payload struct {
	DocumentID    string                  `json:"documentId"`
	Succeeded     bool                    `json:"succeeded"`
	Text          string                  `json:"text,omitempty"`
	Truncated     bool                    `json:"truncated"`
	Method        models.ExtractionMethod `json:"method,omitempty"`
	PageCount     *int                    `json:"pageCount,omitempty"`
	FailureReason string                  `json:"failureReason,omitempty"`
}

// Notifier delivers the final outcome to the caller-supplied target. One
// POST, bounded timeout, hard text cap, no retry: losing the callback is an
// accepted failure mode and never changes the job's own outcome.
type Notifier struct {
	client  *http.Client
	secret  string
	textCap int
	logger  logger.Logger
}

func NewNotifier(timeout time.Duration, textCap int, secret string, log logger.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if textCap <= 0 {
		textCap = DefaultTextCap
	}
	return &Notifier{
		client:  &http.Client{Timeout: timeout},
		secret:  secret,
		textCap: textCap,
		logger:  log,
	}
}

// Notify posts the outcome to target. Errors are logged and returned for
// the caller's log line, but callers must not fail the job on them.
func (n *Notifier) Notify(ctx context.Context, target string, outcome *models.ExtractionOutcome) error {
	text, truncated := n.truncate(outcome.Text)
	payload := Payload{
		DocumentID:    outcome.DocumentID,
		Succeeded:     outcome.Succeeded,
		Text:          text,
		Truncated:     truncated,
		Method:        outcome.Method,
		PageCount:     outcome.PageCount,
		FailureReason: outcome.FailureReason,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SecretHeader, n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("Notification delivery failed",
			logger.String("documentId", outcome.DocumentID),
			logger.String("target", target),
			logger.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("notification target returned status %d", resp.StatusCode)
		n.logger.Error("Notification rejected by target",
			logger.String("documentId", outcome.DocumentID),
			logger.String("target", target),
			logger.Int("status", resp.StatusCode),
		)
		return err
	}

	n.logger.Info("Notification delivered",
		logger.String("documentId", outcome.DocumentID),
		logger.Bool("truncated", truncated),
	)
	return nil
}

// truncate caps text at the configured rune count. Longer text is cut, not
// rejected.
func (n *Notifier) truncate(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= n.textCap {
		return text, false
	}
	return string(runes[:n.textCap]), true
}
