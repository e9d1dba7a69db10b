package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
)

// WebhookSink posts notification events to an HTTP push relay that performs
// the actual device delivery. Schedules are mirrored locally so that pending
// requests can be listed and cancelled by id.
type WebhookSink struct {
	url    string
	secret string
	client *http.Client

	mu      sync.Mutex
	pending map[string]Request
}

// NewWebhookSink creates a webhook sink for the given relay URL.
// If secret is non-empty, requests are signed with HMAC-SHA256.
func NewWebhookSink(url, secret string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		pending: make(map[string]Request),
	}
}

func (w *WebhookSink) Name() string { return "webhook" }

func (w *WebhookSink) Send(ctx context.Context, p Payload) (string, error) {
	id := uuid.New().String()
	if err := w.post(ctx, webhookEvent{Event: "notification.send", ID: id, Payload: &p}); err != nil {
		return "", err
	}
	return id, nil
}

func (w *WebhookSink) Schedule(ctx context.Context, p Payload, s Schedule) (string, error) {
	id := uuid.New().String()
	if err := w.post(ctx, webhookEvent{Event: "notification.schedule", ID: id, Payload: &p, Schedule: &s}); err != nil {
		return "", err
	}

	w.mu.Lock()
	w.pending[id] = Request{ID: id, Payload: p, Schedule: s}
	w.mu.Unlock()
	return id, nil
}

func (w *WebhookSink) Cancel(ctx context.Context, id string) error {
	if err := w.post(ctx, webhookEvent{Event: "notification.cancel", ID: id}); err != nil {
		return err
	}

	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
	return nil
}

func (w *WebhookSink) CancelAll(ctx context.Context) error {
	if err := w.post(ctx, webhookEvent{Event: "notification.cancel_all"}); err != nil {
		return err
	}

	w.mu.Lock()
	w.pending = make(map[string]Request)
	w.mu.Unlock()
	return nil
}

func (w *WebhookSink) Scheduled(_ context.Context) ([]Request, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Request, 0, len(w.pending))
	for _, r := range w.pending {
		out = append(out, r)
	}
	return out, nil
}

type webhookEvent struct {
	Event     string    `json:"event"`
	ID        string    `json:"id,omitempty"`
	Timestamp string    `json:"timestamp"`
	Payload   *Payload  `json:"payload,omitempty"`
	Schedule  *Schedule `json:"schedule,omitempty"`
}

func (w *WebhookSink) post(ctx context.Context, ev webhookEvent) error {
	ev.Timestamp = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	return retry.Do(
		func() error { return w.postOnce(ctx, body) },
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

func (w *WebhookSink) postOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "finwatch/1.0")

	if w.secret != "" {
		sig := computeHMAC(body, []byte(w.secret))
		req.Header.Set("X-Signature-256", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
