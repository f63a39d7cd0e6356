package services

import (
	"context"
	"time"

	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrNotSaved = errors.New("job is not in saved status")

type savedJobStore interface {
	Save(ctx context.Context, job entities.SavedJob) (bool, error)
	UpdateStatus(ctx context.Context, listingID string, userID int64, status entities.SavedJobStatus) (bool, error)
	Defer(ctx context.Context, listingID string, userID int64, now time.Time) (bool, error)
}

// SavedJobs drives the user side of the saved job lifecycle.
type SavedJobs struct {
	store savedJobStore
	now   func() time.Time
}

func NewSavedJobs(store savedJobStore) *SavedJobs {
	return &SavedJobs{store: store, now: time.Now}
}

// Save reports false when the user already saved this listing.
func (s *SavedJobs) Save(ctx context.Context, listingID string, userID int64, userName string,
	origin entities.MessageRef) (bool, error) {

	created, err := s.store.Save(ctx, entities.NewSavedJob(listingID, userID, userName, origin, s.now()))
	if err != nil {
		return false, err
	}
	if created {
		log.Infof("user %d saved job %s", userID, listingID)
	}
	return created, nil
}

func (s *SavedJobs) MarkApplied(ctx context.Context, listingID string, userID int64) error {
	return s.finish(ctx, listingID, userID, entities.StatusApplied)
}

func (s *SavedJobs) MarkDismissed(ctx context.Context, listingID string, userID int64) error {
	return s.finish(ctx, listingID, userID, entities.StatusDismissed)
}

// Defer postpones the next reminder by a full cooldown without spending one.
func (s *SavedJobs) Defer(ctx context.Context, listingID string, userID int64) error {
	updated, err := s.store.Defer(ctx, listingID, userID, s.now())
	if err != nil {
		return err
	}
	if !updated {
		return errors.Wrapf(ErrNotSaved, "defer job %s for user %d", listingID, userID)
	}
	log.Infof("user %d deferred job %s", userID, listingID)
	return nil
}

func (s *SavedJobs) finish(ctx context.Context, listingID string, userID int64, status entities.SavedJobStatus) error {
	updated, err := s.store.UpdateStatus(ctx, listingID, userID, status)
	if err != nil {
		return err
	}
	if !updated {
		return errors.Wrapf(ErrNotSaved, "mark job %s as %s for user %d", listingID, status, userID)
	}
	log.Infof("user %d marked job %s as %s", userID, listingID, status)
	return nil
}
