package logger

import (
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeEnqueuer struct {
	texts []string
}

func (f *fakeEnqueuer) Enqueue(text string) bool {
	f.texts = append(f.texts, text)
	return true
}

func newTestLogger(hook log.Hook) *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(log.DebugLevel)
	logger.AddHook(hook)
	return logger
}

func Test_DispatcherHook_ShouldForwardEntriesAtOrAboveLevel(t *testing.T) {

	assert := assert.New(t)
	target := &fakeEnqueuer{}
	logger := newTestLogger(newDispatcherHook(target, log.InfoLevel))

	logger.Debug("hidden")
	logger.Info("cycle completed")
	logger.WithField(ErrorTypeField, ErrorTypeDb).Error("store failed")

	assert.Len(target.texts, 2)
	assert.Contains(target.texts[0], "cycle completed")
	assert.Contains(target.texts[1], "error_type=db")
	assert.NotContains(target.texts[1], "\x1b[")
}

func Test_DispatcherHook_WhenEntryComesFromDispatcher_ShouldSkipIt(t *testing.T) {
	target := &fakeEnqueuer{}
	logger := newTestLogger(newDispatcherHook(target, log.InfoLevel))

	logger.WithField(sourceField, sourceDispatcher).Error("failed to send chunk")

	assert.Empty(t, target.texts)
}

func Test_Level(t *testing.T) {
	assert.Equal(t, log.WarnLevel, Level("WARNING"))
	assert.Equal(t, log.InfoLevel, Level(""))
}
