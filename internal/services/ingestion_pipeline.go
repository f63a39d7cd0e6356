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
	log "github.com/sirupsen/logrus"
)

type listingSource interface {
	Fetch(ctx context.Context) []entities.Listing
}

type listingRepository interface {
	IsProcessed(ctx context.Context, listingID string) (bool, error)
	InsertIfAbsent(ctx context.Context, listing entities.Listing) (bool, error)
}

type listingFilter interface {
	Check(listing entities.Listing) error
}

type listingSink interface {
	PostListing(ctx context.Context, listing entities.Listing) error
}

type IngestionPipeline struct {
	bus      EventBus.Bus
	source   listingSource
	listings listingRepository
	filter   listingFilter
	sink     listingSink
	delivery retry.Policy
	interval time.Duration
	now      func() time.Time
}

func NewIngestionPipeline(bus EventBus.Bus, source listingSource, listings listingRepository,
	filter listingFilter, sink listingSink, delivery retry.Policy, interval time.Duration) *IngestionPipeline {

	return &IngestionPipeline{
		bus:      bus,
		source:   source,
		listings: listings,
		filter:   filter,
		sink:     sink,
		delivery: delivery,
		interval: interval,
		now:      time.Now,
	}
}

// Run repeats ingestion cycles until ctx is cancelled.
func (p *IngestionPipeline) Run(ctx context.Context) {
	log.Infof("ingestion pipeline started, poll interval: %v", p.interval)

	for ctx.Err() == nil {
		p.RunCycle(ctx)

		log.Infof("next listings check at %v", p.now().Add(p.interval).Format(time.DateTime))
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	log.Info("ingestion pipeline stopped")
}

// RunCycle fetches one page of listings and posts every new listing that
// passes the filter. A listing is stored only after it was delivered, so a
// failed delivery is retried on the next cycle.
func (p *IngestionPipeline) RunCycle(ctx context.Context) entities.CycleResult {

	result := entities.CycleResult{Status: entities.CycleCompleted, StartedAt: p.now()}
	log.Infof("starting listings check at %v", result.StartedAt.Format(time.DateTime))

	listings := p.source.Fetch(ctx)
	result.Fetched = len(listings)

	if len(listings) == 0 {
		log.Info("no listings fetched")
	} else {
		log.Infof("found %d listings", len(listings))
		p.processListings(ctx, listings, &result)
	}

	if result.Failed > 0 || result.Aborted {
		result.Status = entities.CycleCompletedWithErrors
	}
	result.Duration = p.now().Sub(result.StartedAt)
	metrics.IngestionCycleDuration.Observe(result.Duration.Seconds())

	if result.New == 0 && result.Filtered == 0 {
		log.Info("no new listings found")
	} else {
		log.Infof("posted %d new listings (%d filtered out)", result.New, result.Filtered)
	}

	p.bus.Publish(events.CycleCompletedTopic, events.CycleCompleted{Result: result})
	return result
}

func (p *IngestionPipeline) processListings(ctx context.Context, listings []entities.Listing,
	result *entities.CycleResult) {

	for _, listing := range listings {

		if ctx.Err() != nil {
			result.Aborted = true
			return
		}

		processed, err := p.listings.IsProcessed(ctx, listing.ID)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to check listing %s, aborting cycle: %v", listing.ID, err)
			result.Aborted = true
			return
		}
		if processed {
			result.Duplicates++
			metrics.ListingsCounter.WithLabelValues(metrics.ResultDuplicate).Inc()
			continue
		}

		if err = p.filter.Check(listing); err != nil {
			log.Debugf("listing %s (%s) filtered out: %v", listing.ID, listing.Title, err)
			result.Filtered++
			metrics.ListingsCounter.WithLabelValues(metrics.ResultFiltered).Inc()
			continue
		}

		err = p.delivery.Do(ctx, func(ctx context.Context) error {
			return p.sink.PostListing(ctx, listing)
		})
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
				Errorf("failed to post listing %s (%s): %v", listing.ID, listing.Title, err)
			result.Failed++
			metrics.ListingsCounter.WithLabelValues(metrics.ResultFailed).Inc()
			continue
		}

		listing.ProcessedAt = p.now()
		inserted, err := p.listings.InsertIfAbsent(ctx, listing)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to save posted listing %s, aborting cycle: %v", listing.ID, err)
			result.Aborted = true
			return
		}
		if !inserted {
			log.Warnf("listing %s was stored by another cycle", listing.ID)
			result.Duplicates++
			metrics.ListingsCounter.WithLabelValues(metrics.ResultDuplicate).Inc()
			continue
		}

		log.Infof("posted new listing: %s (%s)", listing.Title, listing.ID)
		result.New++
		metrics.ListingsCounter.WithLabelValues(metrics.ResultNew).Inc()
	}
}
