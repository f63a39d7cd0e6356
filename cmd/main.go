package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/seekret-bot/internal/bot"
	"github.com/maxaizer/seekret-bot/internal/clients/seek"
	"github.com/maxaizer/seekret-bot/internal/config"
	"github.com/maxaizer/seekret-bot/internal/filter"
	"github.com/maxaizer/seekret-bot/internal/logger"
	"github.com/maxaizer/seekret-bot/internal/metrics"
	"github.com/maxaizer/seekret-bot/internal/repositories"
	"github.com/maxaizer/seekret-bot/internal/services"
	"github.com/maxaizer/seekret-bot/pkg/dispatcher"
	"github.com/maxaizer/seekret-bot/pkg/loki"
	"github.com/maxaizer/seekret-bot/pkg/retry"
	log "github.com/sirupsen/logrus"
)

func startDispatcher(cfg *config.Config, sender *bot.Sender) *dispatcher.Dispatcher {

	var sinks []dispatcher.Sink
	if cfg.Bot.LogsChatID != 0 {
		sinks = append(sinks, sender)
	}
	if cfg.Logger.LokiURL != "" {
		lokiSink, err := loki.New(loki.Config{
			Url:      cfg.Logger.LokiURL,
			Labels:   map[string]string{"app": cfg.Logger.AppName},
			Username: cfg.Logger.LokiUser,
			Password: cfg.Logger.LokiPassword,
		})
		if err != nil {
			log.Fatalf("can't create loki sink: %v", err)
		}
		sinks = append(sinks, lokiSink)
	}
	if len(sinks) == 0 {
		log.Info("No log sinks configured, log dispatcher disabled")
		return nil
	}

	// not bound to the signal context: log lines written during shutdown must still be flushed
	d, err := dispatcher.New(context.Background(), dispatcher.Config{
		FlushSize:     cfg.Dispatcher.FlushSize,
		FlushInterval: cfg.Dispatcher.FlushInterval,
		ChunkSize:     cfg.Dispatcher.ChunkSize,
		QueueSize:     cfg.Dispatcher.QueueSize,
		CoalesceDelay: cfg.Dispatcher.CoalesceDelay,
		OnFlush: func(trigger dispatcher.Trigger) {
			metrics.DispatcherFlushesCounter.WithLabelValues(string(trigger)).Inc()
		},
		OnDrop: metrics.DispatcherDroppedCounter.Inc,
	}, dispatcher.Fanout(sinks...), logger.DispatcherLogger{})
	if err != nil {
		log.Fatalf("can't create log dispatcher: %v", err)
	}

	logger.AddDispatcherHook(d, logger.Level(cfg.Logger.LogLevel))
	return d
}

func newSeekClient(cfg config.MonitorConfig) *seek.Client {
	params := seek.SearchParameters{
		Where:    cfg.SearchLocation,
		Page:     1,
		PageSize: cfg.PageSize,
		SortMode: cfg.SortMode,
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("invalid search parameters: %v", err)
	}

	client := seek.NewClient(params)
	client.SetRateLimit(cfg.MaxRequestsPerSecond)
	return client
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metricsServer := metrics.StartMetricsServer(cfg.Port)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	listings := repositories.NewListingsRepository(dbContext.DB)
	savedJobsRepo := repositories.NewSavedJobsRepository(dbContext.DB)

	api, err := bot.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.Fatalf("can't authorize bot: %v", err)
	}
	sender := bot.NewSender(api, bot.ChatIDs{
		Jobs:      cfg.Bot.JobsChatID,
		SavedJobs: cfg.Bot.SavedJobsChatID,
		Logs:      cfg.Bot.LogsChatID,
	}, cfg.Bot.SendRequestsPerSecond)

	logDispatcher := startDispatcher(cfg, sender)

	bus := EventBus.New()
	delivery := retry.NewPolicy(cfg.Delivery.MaxAttempts, cfg.Delivery.BaseDelay)

	stats, err := services.NewStatsReporter(bus, listings)
	if err != nil {
		log.Fatalf("can't create stats reporter: %v", err)
	}

	pipeline := services.NewIngestionPipeline(bus, newSeekClient(cfg.Monitor), repositories.NewCachedListings(listings),
		filter.New(filter.Config{
			SalaryMin:         cfg.Filter.SalaryMin,
			ExcludedCompanies: cfg.Filter.ExcludedCompanies,
			RequiredKeywords:  cfg.Filter.RequiredKeywords,
			ExcludedKeywords:  cfg.Filter.ExcludedKeywords,
		}), sender, delivery, cfg.Monitor.PollInterval)

	scheduler, err := services.NewReminderScheduler(bus, savedJobsRepo, listings, sender, delivery)
	if err != nil {
		log.Fatalf("can't create reminder scheduler: %v", err)
	}

	cleaner, err := services.NewSavedJobsCleaner(savedJobsRepo, cfg.Monitor.SavedJobsRetention)
	if err != nil {
		log.Fatalf("can't create cleaner: %v", err)
	}

	tgbot, err := bot.NewBot(api, services.NewSavedJobs(savedJobsRepo), stats)
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tgbot.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		pipeline.Run(ctx)
	}()
	if err = scheduler.Start(ctx); err != nil {
		log.Fatalf("can't start reminder scheduler: %v", err)
	}

	<-ctx.Done()

	log.Info("Shutting down services...")
	tgbot.Stop()
	scheduler.Stop()
	cleaner.Stop()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("metrics server shutdown: %v", err)
	}
	log.Info("Services stopped.")

	if logDispatcher != nil {
		logDispatcher.Stop()
	}
}
