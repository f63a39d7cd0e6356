package repositories

import (
	"context"
	"github.com/maxaizer/seekret-bot/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type listingRepository interface {
	IsProcessed(ctx context.Context, listingID string) (bool, error)
	InsertIfAbsent(ctx context.Context, listing entities.Listing) (bool, error)
}

// CachedListings remembers processed ids so that listings repeated across
// polls skip the database. Only positive answers are cached: a processed
// listing stays processed for the lifetime of the store.
type CachedListings struct {
	repo  listingRepository
	cache *gocache.Cache
}

func NewCachedListings(repo listingRepository) *CachedListings {
	return &CachedListings{repo: repo, cache: gocache.New(6*time.Hour, 12*time.Hour)}
}

func (c CachedListings) IsProcessed(ctx context.Context, listingID string) (bool, error) {
	if _, found := c.cache.Get(listingID); found {
		return true, nil
	}

	processed, err := c.repo.IsProcessed(ctx, listingID)
	if err == nil && processed {
		c.cache.SetDefault(listingID, struct{}{})
	}
	return processed, err
}

func (c CachedListings) InsertIfAbsent(ctx context.Context, listing entities.Listing) (bool, error) {
	inserted, err := c.repo.InsertIfAbsent(ctx, listing)
	if err == nil {
		c.cache.SetDefault(listing.ID, struct{}{})
	}
	return inserted, err
}
