package repositories

import (
	"context"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type Listings struct {
	db *gorm.DB
}

func NewListingsRepository(db *gorm.DB) *Listings {
	return &Listings{db: db}
}

func (repo *Listings) IsProcessed(ctx context.Context, listingID string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.Listing{}).
		Where("id = ?", listingID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(err, "check listing %s", listingID)
	}
	return count > 0, nil
}

// InsertIfAbsent stores the listing unless its id is already known.
// It reports whether a new row was written.
func (repo *Listings) InsertIfAbsent(ctx context.Context, listing entities.Listing) (bool, error) {
	if listing.ProcessedAt.IsZero() {
		listing.ProcessedAt = time.Now()
	}
	listing.ProcessedAt = listing.ProcessedAt.UTC()
	listing.PostedAt = listing.PostedAt.UTC()

	res := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&listing)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "insert listing %s", listing.ID)
	}
	return res.RowsAffected == 1, nil
}

func (repo *Listings) GetByID(ctx context.Context, listingID string) (*entities.Listing, error) {
	var listing entities.Listing
	err := repo.db.WithContext(ctx).First(&listing, "id = ?", listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get listing %s", listingID)
	}
	return &listing, nil
}

func (repo *Listings) Stats(ctx context.Context, now time.Time, topN int) (entities.RunStats, error) {
	var stats entities.RunStats
	db := repo.db.WithContext(ctx)

	if err := db.Model(&entities.Listing{}).Count(&stats.TotalTracked).Error; err != nil {
		return stats, errors.Wrap(err, "count listings")
	}

	if err := db.Model(&entities.Listing{}).
		Where("processed_at > ?", now.Add(-24*time.Hour).UTC()).
		Count(&stats.IngestedLast24h).Error; err != nil {
		return stats, errors.Wrap(err, "count recent listings")
	}

	var err error
	if stats.TopClassifications, err = repo.topBy(ctx, "classification", topN); err != nil {
		return stats, err
	}
	if stats.TopCompanies, err = repo.topBy(ctx, "company", topN); err != nil {
		return stats, err
	}
	if stats.TopWorkTypes, err = repo.topBy(ctx, "work_type", topN); err != nil {
		return stats, err
	}

	return stats, nil
}

// column is always one of the fixed names passed by Stats
func (repo *Listings) topBy(ctx context.Context, column string, limit int) ([]entities.NameCount, error) {
	var rows []entities.NameCount
	err := repo.db.WithContext(ctx).Model(&entities.Listing{}).
		Select("COALESCE(NULLIF(" + column + ", ''), 'Unspecified') AS name, COUNT(*) AS count").
		Group("name").
		Order("count DESC, name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "top listings by %s", column)
	}
	return rows, nil
}
