package publisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"
)

type mockAPI struct {
	errs  []error
	calls int
	sent  []tgbotapi.MessageConfig
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.calls++
	var err error
	if len(m.errs) > 0 {
		err, m.errs = m.errs[0], m.errs[1:]
	}
	if err != nil {
		return tgbotapi.Message{}, err
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable type")
	}
	m.sent = append(m.sent, msg)
	return tgbotapi.Message{MessageID: m.calls}, nil
}

func newTestPublisher(api *mockAPI) *Publisher {
	p := NewWithAPI(api, 42, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.baseDelay = time.Millisecond
	return p
}

func rateLimitErr() error {
	return &tgbotapi.Error{
		Code:    429,
		Message: "Too Many Requests",
	}
}

func rejectedErr() error {
	return &tgbotapi.Error{
		Code:    400,
		Message: "Bad Request: can't parse entities",
	}
}

func TestPublishSuccess(t *testing.T) {
	api := &mockAPI{}
	p := newTestPublisher(api)

	if err := p.Publish(context.Background(), "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if diff := cmp.Diff(1, api.calls); diff != "" {
		t.Errorf("call count mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tgbotapi.ModeMarkdownV2, api.sent[0].ParseMode); diff != "" {
		t.Errorf("parse mode mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(int64(42), api.sent[0].ChatID); diff != "" {
		t.Errorf("chat id mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishRetriesRateLimit(t *testing.T) {
	api := &mockAPI{errs: []error{rateLimitErr(), nil}}
	p := newTestPublisher(api)

	if err := p.Publish(context.Background(), "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if diff := cmp.Diff(2, api.calls); diff != "" {
		t.Errorf("call count mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishRetriesNetworkError(t *testing.T) {
	api := &mockAPI{errs: []error{errors.New("connection reset"), nil}}
	p := newTestPublisher(api)

	if err := p.Publish(context.Background(), "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if diff := cmp.Diff(2, api.calls); diff != "" {
		t.Errorf("call count mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishGivesUpAfterBoundedRetries(t *testing.T) {
	api := &mockAPI{errs: []error{rateLimitErr(), rateLimitErr(), rateLimitErr(), rateLimitErr(), rateLimitErr()}}
	p := newTestPublisher(api)

	err := p.Publish(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if IsPermanent(err) {
		t.Error("rate limit exhaustion must stay transient")
	}
	// Initial attempt plus maxRetries.
	if diff := cmp.Diff(4, api.calls); diff != "" {
		t.Errorf("call count mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishPermanentRejection(t *testing.T) {
	api := &mockAPI{errs: []error{rejectedErr()}}
	p := newTestPublisher(api)

	err := p.Publish(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsPermanent(err) {
		t.Errorf("expected permanent rejection, got %v", err)
	}
	if diff := cmp.Diff(1, api.calls); diff != "" {
		t.Errorf("permanent rejection must not retry (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantAfter     int
	}{
		{
			name: "rate limit with retry_after",
			err: &tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{
				RetryAfter: 7,
			}},
			wantTransient: true,
			wantAfter:     7,
		},
		{
			name:          "server error",
			err:           &tgbotapi.Error{Code: 502, Message: "Bad Gateway"},
			wantTransient: true,
		},
		{
			name:          "bad request",
			err:           &tgbotapi.Error{Code: 400, Message: "can't parse entities"},
			wantTransient: false,
		},
		{
			name:          "forbidden",
			err:           &tgbotapi.Error{Code: 403, Message: "bot was kicked"},
			wantTransient: false,
		},
		{
			name:          "network error",
			err:           errors.New("dial tcp: timeout"),
			wantTransient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, transient := classify(tt.err)
			if transient != tt.wantTransient {
				t.Errorf("transient = %v, want %v", transient, tt.wantTransient)
			}
			if after != tt.wantAfter {
				t.Errorf("retryAfter = %d, want %d", after, tt.wantAfter)
			}
		})
	}
}
