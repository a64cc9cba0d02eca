// Package publisher sends formatted messages to the Telegram channel.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"
)

// ErrRejected marks a permanent transport rejection (e.g. malformed
// content). Retrying such a message can never succeed.
var ErrRejected = errors.New("message rejected")

// maxRetryAfter caps how long a Telegram retry_after hint is honored.
const maxRetryAfter = 60 * time.Second

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher delivers MarkdownV2 messages to a single channel, retrying
// rate-limited sends with bounded backoff inside one Publish call.
type Publisher struct {
	api        telegramAPI
	channelID  int64
	log        *slog.Logger
	maxRetries uint64
	baseDelay  time.Duration
}

// New creates a Publisher with the given Telegram bot token.
func New(token string, channelID int64, log *slog.Logger) (*Publisher, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return NewWithAPI(api, channelID, log), nil
}

// NewWithAPI creates a Publisher over an existing API client (useful
// for testing).
func NewWithAPI(api telegramAPI, channelID int64, log *slog.Logger) *Publisher {
	return &Publisher{
		api:        api,
		channelID:  channelID,
		log:        log,
		maxRetries: 3,
		baseDelay:  2 * time.Second,
	}
}

// Publish sends text to the channel. A rate-limited send is retried a
// bounded number of times with exponential backoff, honoring the
// transport's retry_after hint. A permanent rejection is returned
// wrapped in ErrRejected without further attempts.
func (p *Publisher) Publish(ctx context.Context, text string) error {
	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewExponential(p.baseDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		msg := tgbotapi.NewMessage(p.channelID, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2

		_, err := p.api.Send(msg)
		if err == nil {
			return nil
		}

		retryAfter, transient := classify(err)
		if !transient {
			return fmt.Errorf("%w: %v", ErrRejected, err)
		}
		if retryAfter > 0 {
			p.log.Warn("telegram rate limit", "retry_after", retryAfter)
			if err := sleep(ctx, min(time.Duration(retryAfter)*time.Second, maxRetryAfter)); err != nil {
				return err
			}
		}
		return retry.RetryableError(err)
	})
}

// IsPermanent reports whether a Publish error is a permanent rejection
// rather than a transient transport failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrRejected)
}

// classify splits transport errors into transient (rate limits, server
// errors, network failures) and permanent (content rejected by the API).
func classify(err error) (retryAfter int, transient bool) {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		// Network-level failure; worth retrying.
		return 0, true
	}
	switch {
	case apiErr.RetryAfter > 0 || apiErr.Code == 429:
		return apiErr.RetryAfter, true
	case apiErr.Code >= 500:
		return 0, true
	default:
		return 0, false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
