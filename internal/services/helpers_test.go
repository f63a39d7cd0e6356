package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/internal/repositories"
	"github.com/maxaizer/seekret-bot/pkg/retry"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newTestDb(t *testing.T) *repositories.DbContext {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())

	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func fastPolicy() retry.Policy {
	return retry.NewPolicy(3, time.Millisecond)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

type staticSource struct {
	listings []entities.Listing
}

func (s staticSource) Fetch(context.Context) []entities.Listing {
	return s.listings
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) PostListing(ctx context.Context, listing entities.Listing) error {
	return m.Called(ctx, listing.ID).Error(0)
}

func (m *mockSink) SendReminder(ctx context.Context, job entities.SavedJob, listing entities.Listing) error {
	return m.Called(ctx, job.ListingID, listing.Title).Error(0)
}
