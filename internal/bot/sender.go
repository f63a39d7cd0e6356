package bot

import (
	"context"
	"errors"
	"net/http"
	"time"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/pkg/retry"
	"golang.org/x/time/rate"
)

type ChatIDs struct {
	Jobs      int64
	SavedJobs int64
	Logs      int64
}

// Sender posts listings, reminders and log chunks to their chats. Its
// errors tell the retry policy how to treat a failed request.
type Sender struct {
	api         apiInterface
	rateLimiter *rate.Limiter
	chats       ChatIDs
}

func NewSender(api apiInterface, chats ChatIDs, maxRequestsPerSecond float32) *Sender {
	return &Sender{
		api:         api,
		rateLimiter: rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1),
		chats:       chats,
	}
}

func (s *Sender) PostListing(ctx context.Context, listing entities.Listing) error {
	msg := botApi.NewMessage(s.chats.Jobs, renderListing(listing))
	msg.ParseMode = botApi.ModeHTML
	msg.ReplyMarkup = listingKeyboard(listing)
	return s.send(ctx, msg)
}

func (s *Sender) SendReminder(ctx context.Context, job entities.SavedJob, listing entities.Listing) error {
	msg := botApi.NewMessage(s.chats.SavedJobs, renderReminder(job, listing))
	msg.ParseMode = botApi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = reminderKeyboard(listing)

	if job.OriginMessageRef.ChatID == s.chats.SavedJobs && job.OriginMessageRef.MessageID != 0 {
		msg.ReplyToMessageID = job.OriginMessageRef.MessageID
		msg.AllowSendingWithoutReply = true
	}
	return s.send(ctx, msg)
}

// Send delivers a chunk of log text to the logs chat as plain text.
func (s *Sender) Send(ctx context.Context, chunk string) error {
	msg := botApi.NewMessage(s.chats.Logs, chunk)
	msg.DisableWebPagePreview = true
	msg.DisableNotification = true
	return s.send(ctx, msg)
}

func (s *Sender) send(ctx context.Context, msg botApi.MessageConfig) error {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.api.Send(msg)
	return classifyError(err)
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *botApi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.RetryAfter > 0 {
		return retry.RateLimited(err, time.Duration(apiErr.RetryAfter)*time.Second)
	}
	if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}
