package services

import (
	"context"
	"time"

	"github.com/maxaizer/seekret-bot/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type savedJobsCleanupRepository interface {
	RemoveClosed(ctx context.Context, savedBefore time.Time) (int64, error)
}

// SavedJobsCleaner drops applied and dismissed saved jobs once a day.
type SavedJobsCleaner struct {
	savedJobs savedJobsCleanupRepository
	cron      *cron.Cron
	retention time.Duration
	now       func() time.Time
}

func NewSavedJobsCleaner(savedJobs savedJobsCleanupRepository, retention time.Duration) (*SavedJobsCleaner, error) {

	if retention < 24*time.Hour {
		return nil, errors.New("retention must be at least one day")
	}

	c := &SavedJobsCleaner{
		savedJobs: savedJobs,
		cron:      cron.New(),
		retention: retention,
		now:       time.Now,
	}

	_, err := c.cron.AddFunc("0 0 * * *", func() { c.RunOnce(context.Background()) })
	if err != nil {
		return nil, err
	}

	c.cron.Start()
	log.Infof("saved jobs cleaner started, retention: %v", c.retention)
	return c, nil
}

func (c *SavedJobsCleaner) Stop() {
	<-c.cron.Stop().Done()
}

func (c *SavedJobsCleaner) RunOnce(ctx context.Context) int64 {
	rowsAffected, err := c.savedJobs.RemoveClosed(ctx, c.now().Add(-c.retention))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("Failed to clean saved jobs: %v", err)
		return 0
	}
	log.Infof("Closed saved jobs cleaned, affected rows: %v", rowsAffected)
	return rowsAffected
}
