package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/internal/logger"
	"github.com/maxaizer/seekret-bot/internal/services"
	log "github.com/sirupsen/logrus"
)

type savedJobsService interface {
	Save(ctx context.Context, listingID string, userID int64, userName string, origin entities.MessageRef) (bool, error)
	MarkApplied(ctx context.Context, listingID string, userID int64) error
	MarkDismissed(ctx context.Context, listingID string, userID int64) error
	Defer(ctx context.Context, listingID string, userID int64) error
}

type statsProvider interface {
	Stats(ctx context.Context) (entities.RunStats, error)
}

type Bot struct {
	api       updatesInterface
	savedJobs savedJobsService
	stats     statsProvider
	handlers  sync.WaitGroup
}

// NewBotAPI authorizes the token and routes the library logs through logrus.
func NewBotAPI(token string) (*botApi.BotAPI, error) {
	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	if err = botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}
	return api, nil
}

func NewBot(api updatesInterface, savedJobs savedJobsService, stats statsProvider) (*Bot, error) {

	if api == nil {
		return nil, errors.New("api is nil")
	}

	if savedJobs == nil {
		return nil, errors.New("saved jobs service is nil")
	}

	if stats == nil {
		return nil, errors.New("stats provider is nil")
	}

	return &Bot{api: api, savedJobs: savedJobs, stats: stats}, nil
}

// Run handles updates until the context is cancelled or the updates channel is closed.
func (b *Bot) Run(ctx context.Context) {

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(updateConfig)

	defer b.handlers.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handlers.Add(1)
			go func() {
				defer b.handlers.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleUpdate(ctx context.Context, update botApi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *botApi.Message) {

	var response botApi.MessageConfig

	switch message.Command() {
	case "start":
		response = botApi.NewMessage(message.Chat.ID,
			"Hi! I post fresh SEEK listings here. Tap 🔖 Save on a job and I'll nudge you to apply.")
	case "stats":
		stats, err := b.stats.Stats(ctx)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("couldn't load stats: %v", err)
			response = botApi.NewMessage(message.Chat.ID, "Couldn't load stats, try again later.")
			break
		}
		response = botApi.NewMessage(message.Chat.ID, services.FormatStats(stats))
	default:
		return
	}

	response.ReplyToMessageID = message.MessageID
	response.AllowSendingWithoutReply = true
	_, _ = sendWithLogError(b.api, response)
}

func (b *Bot) handleCallback(ctx context.Context, query *botApi.CallbackQuery) {

	action, listingID, ok := parseCallbackData(query.Data)
	if !ok || query.From == nil {
		requestWithLogError(b.api, botApi.NewCallback(query.ID, "Unknown action"))
		return
	}

	userID := query.From.ID
	var answer string
	var err error
	deleteMessage := false

	switch action {
	case actionSave:
		answer, err = b.save(ctx, query, listingID)
	case actionHide:
		answer = "Job dismissed!"
		deleteMessage = true
	case actionApplied:
		err = b.savedJobs.MarkApplied(ctx, listingID, userID)
		answer = "Congratulations on applying! 🎉"
		deleteMessage = true
	case actionLater:
		err = b.savedJobs.Defer(ctx, listingID, userID)
		answer = "I'll remind you again tomorrow!"
		deleteMessage = true
	case actionDismiss:
		err = b.savedJobs.MarkDismissed(ctx, listingID, userID)
		answer = "Job removed from saved list."
		deleteMessage = true
	default:
		answer = "Unknown action"
	}

	if err != nil {
		deleteMessage = false
		if errors.Is(err, services.ErrNotSaved) {
			answer = "This job is no longer in your saved list."
		} else {
			answer = "Something went wrong, try again later."
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("couldn't handle %s for job %s: %v", action, listingID, err)
		}
	}

	requestWithLogError(b.api, botApi.NewCallback(query.ID, answer))

	if deleteMessage && query.Message != nil && query.Message.Chat != nil {
		requestWithLogError(b.api, botApi.NewDeleteMessage(query.Message.Chat.ID, query.Message.MessageID))
	}
}

func (b *Bot) save(ctx context.Context, query *botApi.CallbackQuery, listingID string) (string, error) {

	var origin entities.MessageRef
	if query.Message != nil && query.Message.Chat != nil {
		origin = entities.MessageRef{ChatID: query.Message.Chat.ID, MessageID: query.Message.MessageID}
	}

	created, err := b.savedJobs.Save(ctx, listingID, query.From.ID, displayName(query.From), origin)
	if err != nil {
		return "", err
	}
	if !created {
		return "You've already saved this job.", nil
	}
	return "Job saved! I'll send you gentle reminders to apply.", nil
}

func displayName(user *botApi.User) string {
	if user.UserName != "" {
		return "@" + user.UserName
	}
	if user.LastName != "" {
		return fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	}
	return user.FirstName
}
