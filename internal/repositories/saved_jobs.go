package repositories

import (
	"context"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type SavedJobs struct {
	db *gorm.DB
}

func NewSavedJobsRepository(db *gorm.DB) *SavedJobs {
	return &SavedJobs{db: db}
}

// Save creates the saved job if the (listing, user) pair is new. An existing
// row keeps its state, so a finished job is never reopened by a second save.
func (repo *SavedJobs) Save(ctx context.Context, job entities.SavedJob) (bool, error) {
	job.SavedAt = job.SavedAt.UTC()
	res := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&job)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "save job %s for user %d", job.ListingID, job.UserID)
	}
	return res.RowsAffected == 1, nil
}

func (repo *SavedJobs) Get(ctx context.Context, listingID string, userID int64) (*entities.SavedJob, error) {
	var job entities.SavedJob
	err := repo.db.WithContext(ctx).
		First(&job, "listing_id = ? AND user_id = ?", listingID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get saved job %s for user %d", listingID, userID)
	}
	return &job, nil
}

func (repo *SavedJobs) GetDueForReminder(ctx context.Context, now time.Time) ([]entities.SavedJob, error) {
	var jobs []entities.SavedJob
	err := repo.dueForReminder(repo.db.WithContext(ctx), now).
		Order("saved_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, errors.Wrap(err, "get saved jobs due for reminder")
	}
	return jobs, nil
}

// RecordReminderSent bumps the reminder counter in a single conditional
// statement. It reports false when the row stopped being eligible in the
// meantime (user acted, or another run already counted this reminder).
func (repo *SavedJobs) RecordReminderSent(ctx context.Context, listingID string, userID int64, now time.Time) (bool, error) {
	res := repo.dueForReminder(repo.db.WithContext(ctx).Model(&entities.SavedJob{}), now).
		Where("listing_id = ? AND user_id = ?", listingID, userID).
		Updates(map[string]any{
			"last_reminder_at": now.UTC(),
			"reminder_count":   gorm.Expr("reminder_count + 1"),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "record reminder for job %s user %d", listingID, userID)
	}
	return res.RowsAffected == 1, nil
}

// UpdateStatus moves a saved job into a terminal status. Rows that already
// left the saved status are not touched.
func (repo *SavedJobs) UpdateStatus(ctx context.Context, listingID string, userID int64,
	status entities.SavedJobStatus) (bool, error) {

	if !status.IsTerminal() {
		return false, errors.Errorf("status %q is not terminal", status)
	}

	res := repo.db.WithContext(ctx).Model(&entities.SavedJob{}).
		Where("listing_id = ? AND user_id = ? AND status = ?", listingID, userID, entities.StatusSaved).
		Update("status", status)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "update status of job %s user %d", listingID, userID)
	}
	return res.RowsAffected == 1, nil
}

// Defer restarts the reminder cooldown without spending an attempt.
func (repo *SavedJobs) Defer(ctx context.Context, listingID string, userID int64, now time.Time) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&entities.SavedJob{}).
		Where("listing_id = ? AND user_id = ? AND status = ?", listingID, userID, entities.StatusSaved).
		Update("last_reminder_at", now.UTC())
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "defer job %s user %d", listingID, userID)
	}
	return res.RowsAffected == 1, nil
}

// RemoveClosed deletes applied and dismissed jobs saved before the given time.
// Dormant jobs stay saved until the user acts on them.
func (repo *SavedJobs) RemoveClosed(ctx context.Context, savedBefore time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).
		Where("saved_at < ?", savedBefore.UTC()).
		Where("status IN ?", []entities.SavedJobStatus{entities.StatusApplied, entities.StatusDismissed}).
		Delete(&entities.SavedJob{})
	return res.RowsAffected, errors.Wrap(res.Error, "remove closed saved jobs")
}

func (repo *SavedJobs) dueForReminder(db *gorm.DB, now time.Time) *gorm.DB {
	return db.
		Where("status = ?", entities.StatusSaved).
		Where("reminder_count < ?", entities.MaxReminders).
		Where("(last_reminder_at IS NULL OR last_reminder_at <= ?)", now.Add(-entities.ReminderCooldown).UTC())
}
