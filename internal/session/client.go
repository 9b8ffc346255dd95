package session

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/byte-squad-abac/bookreader/internal/api"
)

// HTTPRecorder pushes session records to a remote collector over the
// bookreader API. Transient failures are retried; the caller's context
// bounds the whole attempt.
type HTTPRecorder struct {
	client   *api.Client
	attempts uint
	delay    time.Duration
}

// NewHTTPRecorder builds a recorder against baseURL.
func NewHTTPRecorder(baseURL string) *HTTPRecorder {
	return &HTTPRecorder{
		client:   api.NewClient(baseURL),
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
}

// StartRequest is the wire form of Recorder.Start.
type StartRequest struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
}

// TickRequest is the wire form of Recorder.Tick.
type TickRequest struct {
	Seconds  int     `json:"seconds"`
	Page     int     `json:"page"`
	Progress float64 `json:"progress"`
}

// Start implements Recorder.
func (r *HTTPRecorder) Start(ctx context.Context, userID, bookID string) (Record, error) {
	var rec Record
	err := r.do(ctx, func() error {
		return r.client.Post(ctx, "/api/sessions", StartRequest{UserID: userID, BookID: bookID}, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to start remote session: %w", err)
	}
	return rec, nil
}

// Tick implements Recorder.
func (r *HTTPRecorder) Tick(ctx context.Context, id string, seconds, page int, progress float64) (Record, error) {
	var rec Record
	err := r.do(ctx, func() error {
		return r.client.Patch(ctx, "/api/sessions/"+id,
			TickRequest{Seconds: seconds, Page: page, Progress: progress}, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to tick remote session: %w", err)
	}
	return rec, nil
}

// End implements Recorder.
func (r *HTTPRecorder) End(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := r.do(ctx, func() error {
		return r.client.Post(ctx, "/api/sessions/"+id+"/end", nil, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to end remote session: %w", err)
	}
	return rec, nil
}

func (r *HTTPRecorder) do(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
	)
}
