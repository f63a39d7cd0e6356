package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_SavedJob_DueForReminder(t *testing.T) {

	assert := assert.New(t)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	job := NewSavedJob("1", 10, "user", MessageRef{}, now.Add(-25*time.Hour))
	assert.True(job.DueForReminder(now), "never reminded")

	recent := now.Add(-23 * time.Hour)
	job.LastReminderAt = &recent
	assert.False(job.DueForReminder(now), "cooldown not elapsed")

	old := now.Add(-24 * time.Hour)
	job.LastReminderAt = &old
	assert.True(job.DueForReminder(now), "cooldown elapsed exactly")

	job.ReminderCount = MaxReminders
	assert.False(job.DueForReminder(now))
	assert.True(job.Dormant())
}

func Test_SavedJob_WhenTerminal_ShouldNeverBeDue(t *testing.T) {

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for _, status := range []SavedJobStatus{StatusApplied, StatusDismissed} {
		job := NewSavedJob("1", 10, "user", MessageRef{}, now.Add(-72*time.Hour))
		job.Status = status
		assert.True(t, status.IsTerminal())
		assert.False(t, job.DueForReminder(now))
		assert.False(t, job.Dormant())
	}
}
