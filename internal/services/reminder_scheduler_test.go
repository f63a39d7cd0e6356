package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/internal/events"
	"github.com/maxaizer/seekret-bot/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reminderFixture struct {
	scheduler *ReminderScheduler
	savedJobs *repositories.SavedJobs
	listings  *repositories.Listings
	sink      *mockSink
	clock     *clock
	bus       EventBus.Bus
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	db := newTestDb(t).DB
	f := &reminderFixture{
		savedJobs: repositories.NewSavedJobsRepository(db),
		listings:  repositories.NewListingsRepository(db),
		sink:      &mockSink{},
		clock:     &clock{now: baseTime},
		bus:       EventBus.New(),
	}

	scheduler, err := NewReminderScheduler(f.bus, f.savedJobs, f.listings, f.sink, fastPolicy())
	require.NoError(t, err)
	scheduler.now = f.clock.Now
	f.scheduler = scheduler
	return f
}

func (f *reminderFixture) save(t *testing.T, listingID string, at time.Time) {
	t.Helper()
	_, err := f.listings.InsertIfAbsent(context.Background(),
		entities.Listing{ID: listingID, Title: "Job " + listingID, ProcessedAt: at})
	require.NoError(t, err)

	service := NewSavedJobs(f.savedJobs)
	service.now = func() time.Time { return at }

	created, err := service.Save(context.Background(), listingID, 7, "tester", entities.MessageRef{})
	require.NoError(t, err)
	require.True(t, created)
}

func (f *reminderFixture) job(t *testing.T, listingID string) *entities.SavedJob {
	t.Helper()
	job, err := f.savedJobs.Get(context.Background(), listingID, 7)
	require.NoError(t, err)
	require.NotNil(t, job)
	return job
}

func Test_ReminderScheduler_ShouldStopAfterThreeReminders(t *testing.T) {

	assert := assert.New(t)
	f := newReminderFixture(t)
	f.save(t, "J2", baseTime)
	f.sink.On("SendReminder", mock.Anything, "J2", "Job J2").Return(nil)

	var attempts []int
	require.NoError(t, f.bus.Subscribe(events.ReminderSentTopic, func(event events.ReminderSent) {
		attempts = append(attempts, event.Attempt)
	}))

	f.clock.now = baseTime.Add(25 * time.Hour)
	assert.Equal(1, f.scheduler.RunOnce(context.Background()))
	assert.Equal(1, f.job(t, "J2").ReminderCount)

	f.clock.now = f.clock.now.Add(time.Hour)
	assert.Equal(0, f.scheduler.RunOnce(context.Background()), "cooldown")

	f.clock.now = baseTime.Add(49 * time.Hour)
	assert.Equal(1, f.scheduler.RunOnce(context.Background()))
	f.clock.now = baseTime.Add(73 * time.Hour)
	assert.Equal(1, f.scheduler.RunOnce(context.Background()))

	f.clock.now = baseTime.Add(97 * time.Hour)
	assert.Equal(0, f.scheduler.RunOnce(context.Background()))

	job := f.job(t, "J2")
	assert.Equal(entities.MaxReminders, job.ReminderCount)
	assert.Equal(entities.StatusSaved, job.Status)
	assert.Equal([]int{1, 2, 3}, attempts)
	f.sink.AssertNumberOfCalls(t, "SendReminder", 3)
}

func Test_ReminderScheduler_WhenOneDeliveryFails_ShouldRemindOthers(t *testing.T) {

	assert := assert.New(t)
	f := newReminderFixture(t)
	f.save(t, "A", baseTime)
	f.save(t, "B", baseTime.Add(time.Minute))

	f.sink.On("SendReminder", mock.Anything, "A", mock.Anything).Return(errors.New("chat not found"))
	f.sink.On("SendReminder", mock.Anything, "B", mock.Anything).Return(nil)

	f.clock.now = baseTime.Add(30 * time.Hour)
	assert.Equal(1, f.scheduler.RunOnce(context.Background()))

	assert.Equal(0, f.job(t, "A").ReminderCount)
	assert.Nil(f.job(t, "A").LastReminderAt)
	assert.Equal(1, f.job(t, "B").ReminderCount)
}

func Test_ReminderScheduler_WhenUserActed_ShouldNotRemind(t *testing.T) {

	assert := assert.New(t)
	f := newReminderFixture(t)
	f.save(t, "applied", baseTime)
	f.save(t, "dismissed", baseTime)
	f.save(t, "deferred", baseTime)

	service := NewSavedJobs(f.savedJobs)
	service.now = f.clock.Now
	f.clock.now = baseTime.Add(20 * time.Hour)

	require.NoError(t, service.MarkApplied(context.Background(), "applied", 7))
	require.NoError(t, service.MarkDismissed(context.Background(), "dismissed", 7))
	require.NoError(t, service.Defer(context.Background(), "deferred", 7))

	f.clock.now = baseTime.Add(30 * time.Hour)
	assert.Equal(0, f.scheduler.RunOnce(context.Background()))

	f.sink.On("SendReminder", mock.Anything, "deferred", mock.Anything).Return(nil)
	f.clock.now = baseTime.Add(44 * time.Hour)
	assert.Equal(1, f.scheduler.RunOnce(context.Background()))

	assert.Equal(0, f.job(t, "applied").ReminderCount)
	assert.Equal(1, f.job(t, "deferred").ReminderCount)
	f.sink.AssertNumberOfCalls(t, "SendReminder", 1)
}

func Test_ReminderScheduler_Start_ShouldScanImmediatelyAndSchedule(t *testing.T) {

	assert := assert.New(t)
	f := newReminderFixture(t)
	f.save(t, "J2", baseTime)
	f.sink.On("SendReminder", mock.Anything, "J2", "Job J2").Return(nil)
	f.clock.now = baseTime.Add(25 * time.Hour)

	assert.NoError(f.scheduler.Start(context.Background()))
	defer f.scheduler.Stop()

	assert.Len(f.scheduler.cron.Entries(), 1)
	assert.Equal(1, f.job(t, "J2").ReminderCount)
	f.sink.AssertNumberOfCalls(t, "SendReminder", 1)
}
