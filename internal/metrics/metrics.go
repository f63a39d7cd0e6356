package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	ListingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_listings_total",
			Help: "Total number of fetched listings by outcome.",
		},
		[]string{"result"},
	)
	IngestionCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_ingestion_cycle_duration_seconds",
			Help:    "Duration of each ingestion cycle in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)
	RemindersCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_reminders_total",
			Help: "Total number of reminders by outcome.",
		},
		[]string{"result"},
	)
	DispatcherFlushesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_dispatcher_flushes_total",
			Help: "Total number of log dispatcher flushes by trigger.",
		},
		[]string{"trigger"},
	)
	DispatcherDroppedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_dispatcher_dropped_total",
			Help: "Total number of log fragments dropped because the queue was full.",
		},
	)
)

const (
	ResultNew       = "new"
	ResultFiltered  = "filtered"
	ResultFailed    = "failed"
	ResultDuplicate = "duplicate"
	ResultSent      = "sent"
)

func init() {
	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(ListingsCounter)
	prometheus.MustRegister(IngestionCycleDuration)
	prometheus.MustRegister(RemindersCounter)
	prometheus.MustRegister(DispatcherFlushesCounter)
	prometheus.MustRegister(DispatcherDroppedCounter)
}

func StartMetricsServer(port int) *http.Server {

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server stopped: %v", err)
		}
	}()
	return server
}
