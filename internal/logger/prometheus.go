package logger

import (
	"github.com/maxaizer/seekret-bot/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const errorTypeUnknown = "unknown"

// errorsHook counts error entries by their error type. Entries without one
// are counted under their source, if any.
type errorsHook struct {
	counter *prometheus.CounterVec
}

func newErrorsHook(counter *prometheus.CounterVec) *errorsHook {
	return &errorsHook{counter: counter}
}

func (h *errorsHook) Fire(entry *log.Entry) error {
	h.counter.WithLabelValues(errorType(entry)).Inc()
	return nil
}

func (h *errorsHook) Levels() []log.Level {
	return []log.Level{
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func errorType(entry *log.Entry) string {
	if value, ok := entry.Data[ErrorTypeField].(string); ok && value != "" {
		return value
	}
	if value, ok := entry.Data[sourceField].(string); ok && value != "" {
		return value
	}
	return errorTypeUnknown
}

func addPrometheusHook() {
	log.AddHook(newErrorsHook(metrics.ErrorsCounter))
}
