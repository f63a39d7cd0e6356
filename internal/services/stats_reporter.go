package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/internal/events"
	"github.com/maxaizer/seekret-bot/internal/logger"
	log "github.com/sirupsen/logrus"
)

const topStatsSize = 5

type statsRepository interface {
	Stats(ctx context.Context, now time.Time, topN int) (entities.RunStats, error)
}

// StatsReporter logs a summary of the tracked listings after every cycle.
type StatsReporter struct {
	listings statsRepository
	now      func() time.Time
}

func NewStatsReporter(bus EventBus.Bus, listings statsRepository) (*StatsReporter, error) {
	r := &StatsReporter{listings: listings, now: time.Now}

	if err := bus.Subscribe(events.CycleCompletedTopic, r.onCycleCompleted); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.ReminderSentTopic, r.onReminderSent); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *StatsReporter) Stats(ctx context.Context) (entities.RunStats, error) {
	return r.listings.Stats(ctx, r.now(), topStatsSize)
}

func (r *StatsReporter) onCycleCompleted(event events.CycleCompleted) {
	result := event.Result
	log.Infof("cycle %s in %v: fetched %d, new %d, filtered %d, failed %d, already seen %d",
		result.Status, result.Duration.Round(time.Millisecond), result.Fetched, result.New,
		result.Filtered, result.Failed, result.Duplicates)

	if result.Aborted {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := r.Stats(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("error getting statistics: %v", err)
		return
	}
	log.Info(FormatStats(stats))
}

func (r *StatsReporter) onReminderSent(event events.ReminderSent) {
	log.Infof("reminder %d/%d sent to user %d for job %s", event.Attempt, entities.MaxReminders,
		event.Job.UserID, event.Job.ListingID)
}

func FormatStats(stats entities.RunStats) string {
	var sb strings.Builder
	sb.WriteString("Job Statistics\n")
	fmt.Fprintf(&sb, "Total jobs tracked: %d\n", stats.TotalTracked)
	fmt.Fprintf(&sb, "Jobs in last 24h: %d\n", stats.IngestedLast24h)

	writeTop := func(title string, rows []entities.NameCount) {
		fmt.Fprintf(&sb, "\n%s:\n", title)
		if len(rows) == 0 {
			sb.WriteString("• none\n")
		}
		for _, row := range rows {
			fmt.Fprintf(&sb, "• %s: %d\n", row.Name, row.Count)
		}
	}
	writeTop("Top Classifications", stats.TopClassifications)
	writeTop("Most Active Companies", stats.TopCompanies)
	writeTop("Work Type Distribution", stats.TopWorkTypes)

	return strings.TrimRight(sb.String(), "\n")
}
