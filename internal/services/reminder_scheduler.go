package services

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/internal/events"
	"github.com/maxaizer/seekret-bot/internal/logger"
	"github.com/maxaizer/seekret-bot/internal/metrics"
	"github.com/maxaizer/seekret-bot/pkg/retry"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type reminderRepository interface {
	GetDueForReminder(ctx context.Context, now time.Time) ([]entities.SavedJob, error)
	RecordReminderSent(ctx context.Context, listingID string, userID int64, now time.Time) (bool, error)
}

type listingLookup interface {
	GetByID(ctx context.Context, listingID string) (*entities.Listing, error)
}

type reminderSink interface {
	SendReminder(ctx context.Context, job entities.SavedJob, listing entities.Listing) error
}

type ReminderScheduler struct {
	bus       EventBus.Bus
	savedJobs reminderRepository
	listings  listingLookup
	sink      reminderSink
	delivery  retry.Policy
	cron      *cron.Cron
	now       func() time.Time
}

func NewReminderScheduler(bus EventBus.Bus, savedJobs reminderRepository, listings listingLookup,
	sink reminderSink, delivery retry.Policy) (*ReminderScheduler, error) {

	cronLogger := cron.PrintfLogger(log.StandardLogger())
	s := &ReminderScheduler{
		bus:       bus,
		savedJobs: savedJobs,
		listings:  listings,
		sink:      sink,
		delivery:  delivery,
		cron:      cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		now:       time.Now,
	}
	return s, nil
}

// Start runs one reminder scan right away and then one every period. Scans
// stop early once ctx is cancelled.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("@every "+entities.ReminderPeriod.String(), func() {
		if ctx.Err() != nil {
			return
		}
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.RunOnce(ctx)
	s.cron.Start()
	log.Infof("reminder scheduler started, period: %v", entities.ReminderPeriod)
	return nil
}

// Stop waits for a running scan to finish.
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("reminder scheduler stopped")
}

// RunOnce reminds users about every saved job that is due and returns the
// number of reminders sent. One failed reminder does not stop the others.
func (s *ReminderScheduler) RunOnce(ctx context.Context) int {

	now := s.now()
	due, err := s.savedJobs.GetDueForReminder(ctx, now)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to get saved jobs due for reminder: %v", err)
		return 0
	}
	if len(due) == 0 {
		log.Debug("no saved jobs due for reminder")
		return 0
	}

	sent := 0
	for _, job := range due {
		if ctx.Err() != nil {
			break
		}
		if s.remind(ctx, job, now) {
			sent++
		}
	}

	log.Infof("sent %d of %d due reminders", sent, len(due))
	return sent
}

func (s *ReminderScheduler) remind(ctx context.Context, job entities.SavedJob, now time.Time) bool {

	listing, err := s.listings.GetByID(ctx, job.ListingID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to get listing %s for reminder: %v", job.ListingID, err)
		return false
	}
	if listing == nil {
		listing = &entities.Listing{ID: job.ListingID, Title: "Saved job " + job.ListingID}
	}

	err = s.delivery.Do(ctx, func(ctx context.Context) error {
		return s.sink.SendReminder(ctx, job, *listing)
	})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("failed to send reminder for job %s to user %d: %v", job.ListingID, job.UserID, err)
		metrics.RemindersCounter.WithLabelValues(metrics.ResultFailed).Inc()
		return false
	}
	metrics.RemindersCounter.WithLabelValues(metrics.ResultSent).Inc()

	updated, err := s.savedJobs.RecordReminderSent(ctx, job.ListingID, job.UserID, now)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record reminder for job %s user %d: %v", job.ListingID, job.UserID, err)
		return true
	}
	if !updated {
		log.Warnf("saved job %s of user %d changed while its reminder was sent", job.ListingID, job.UserID)
		return true
	}

	s.bus.Publish(events.ReminderSentTopic, events.ReminderSent{
		Job:     job,
		Attempt: job.ReminderCount + 1,
		SentAt:  now,
	})
	return true
}
