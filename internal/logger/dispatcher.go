package logger

import (
	"github.com/maxaizer/seekret-bot/pkg/dispatcher"
	log "github.com/sirupsen/logrus"
)

const (
	sourceField      = "source"
	sourceDispatcher = "dispatcher"
)

// DispatcherLogger reports dispatcher failures. Its entries are tagged so
// that the dispatcher hook never feeds them back into the dispatcher.
type DispatcherLogger struct{}

func (l DispatcherLogger) Error(msg string, args ...any) {
	log.WithFields(log.Fields{
		"args":         args,
		sourceField:    sourceDispatcher,
		ErrorTypeField: ErrorTypeDispatcher,
	}).Error(msg)
}

type enqueuer interface {
	Enqueue(text string) bool
}

type dispatcherHook struct {
	target    enqueuer
	formatter log.Formatter
	minLevel  log.Level
}

func (h *dispatcherHook) Fire(entry *log.Entry) error {
	if entry.Data[sourceField] == sourceDispatcher {
		return nil
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.target.Enqueue(string(line))
	return nil
}

func (h *dispatcherHook) Levels() []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= h.minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}

func newDispatcherHook(target enqueuer, minLevel log.Level) *dispatcherHook {
	formatter := newFormatter()
	formatter.DisableColors = true
	return &dispatcherHook{target: target, formatter: formatter, minLevel: minLevel}
}

// AddDispatcherHook mirrors every log entry at or above minLevel into d.
func AddDispatcherHook(d *dispatcher.Dispatcher, minLevel log.Level) {
	log.AddHook(newDispatcherHook(d, minLevel))
	log.Info("Log dispatcher enabled")
}
