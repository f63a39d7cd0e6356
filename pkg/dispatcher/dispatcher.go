package dispatcher

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
)

type Trigger string

const (
	TriggerSize     Trigger = "size"
	TriggerTime     Trigger = "time"
	TriggerShutdown Trigger = "shutdown"
)

// Sink receives flushed text, one chunk at a time.
type Sink interface {
	Send(ctx context.Context, chunk string) error
}

type SinkFunc func(ctx context.Context, chunk string) error

func (f SinkFunc) Send(ctx context.Context, chunk string) error {
	return f(ctx, chunk)
}

// Logger reports sink failures. It must not write back into the dispatcher.
type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {

	// FlushSize is the buffer size in bytes above which the buffer is flushed.
	FlushSize int `validate:"gte=1"`

	// FlushInterval is the longest time buffered text waits for a flush.
	FlushInterval time.Duration `validate:"gte=1"`

	// ChunkSize is the largest piece of text handed to the sink in one call.
	ChunkSize int `validate:"gte=1"`

	// QueueSize bounds the number of pending fragments. Fragments that do not
	// fit are dropped.
	QueueSize int `validate:"gte=1"`

	// CoalesceDelay is the pause after each drain so that further fragments
	// can join the same buffer.
	CoalesceDelay time.Duration `validate:"gte=0"`

	// ShutdownTimeout bounds the final flush.
	ShutdownTimeout time.Duration `validate:"gte=0"`

	// OnFlush and OnDrop are optional observers.
	OnFlush func(Trigger)
	OnDrop  func()
}

func (cfg *Config) setDefaults() {
	if cfg.FlushSize == 0 {
		cfg.FlushSize = 1500
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 3500
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 4096
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.OnFlush == nil {
		cfg.OnFlush = func(Trigger) {}
	}
	if cfg.OnDrop == nil {
		cfg.OnDrop = func() {}
	}
}

type Dispatcher struct {
	config    *Config
	ctx       context.Context
	cancel    context.CancelFunc
	sink      Sink
	logger    Logger
	queue     chan string
	quit      chan struct{}
	stopOnce  sync.Once
	stopped   atomic.Bool
	waitGroup sync.WaitGroup

	buffer    strings.Builder
	lastFlush time.Time
	now       func() time.Time

	dropped atomic.Int64
}

func New(ctx context.Context, cfg Config, sink Sink, logger Logger) (*Dispatcher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		config: &cfg,
		ctx:    ctx,
		cancel: cancel,
		sink:   sink,
		logger: logger,
		queue:  make(chan string, cfg.QueueSize),
		quit:   make(chan struct{}),
		now:    time.Now,
	}
	d.lastFlush = d.now()

	d.waitGroup.Add(1)
	go d.run()
	return d, nil
}

// Enqueue never blocks. It reports false when the fragment was dropped
// because the queue is full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(text string) bool {
	if text == "" {
		return true
	}
	if d.stopped.Load() {
		d.drop()
		return false
	}

	select {
	case d.queue <- text:
		return true
	default:
		d.drop()
		return false
	}
}

func (d *Dispatcher) Write(p []byte) (int, error) {
	d.Enqueue(string(p))
	return len(p), nil
}

func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Stop flushes whatever is buffered and waits for the consumer to exit.
// It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.quit)
	})
	d.waitGroup.Wait()
	d.cancel()
}

func (d *Dispatcher) drop() {
	d.dropped.Add(1)
	d.config.OnDrop()
}

func (d *Dispatcher) run() {
	ticker := time.NewTicker(max(d.config.FlushInterval/2, time.Millisecond))
	defer ticker.Stop()

	defer func() {
		d.drain()
		if d.buffer.Len() > 0 {
			d.flush(TriggerShutdown)
		}
		d.waitGroup.Done()
	}()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.quit:
			return
		case text := <-d.queue:
			d.buffer.WriteString(text)
			d.drain()

			if d.buffer.Len() > d.config.FlushSize {
				d.flush(TriggerSize)
			} else if d.intervalElapsed() {
				d.flush(TriggerTime)
			}

			d.pause()
		case <-ticker.C:
			if d.buffer.Len() > 0 && d.intervalElapsed() {
				d.flush(TriggerTime)
			}
		}
	}
}

// drain appends every fragment that is already queued.
func (d *Dispatcher) drain() {
	for {
		select {
		case text := <-d.queue:
			d.buffer.WriteString(text)
		default:
			return
		}
	}
}

func (d *Dispatcher) pause() {
	if d.config.CoalesceDelay <= 0 {
		return
	}
	timer := time.NewTimer(d.config.CoalesceDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-d.quit:
	case <-d.ctx.Done():
	}
}

func (d *Dispatcher) intervalElapsed() bool {
	return d.now().Sub(d.lastFlush) >= d.config.FlushInterval
}

func (d *Dispatcher) flush(trigger Trigger) {
	content := d.buffer.String()
	d.buffer.Reset()
	d.lastFlush = d.now()

	ctx := d.ctx
	if trigger == TriggerShutdown {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(d.ctx), d.config.ShutdownTimeout)
		defer cancel()
	}

	for _, chunk := range Split(content, d.config.ChunkSize) {
		if err := d.sink.Send(ctx, chunk); err != nil {
			d.logger.Error("failed to send chunk", "trigger", string(trigger), "error", err)
		}
	}
	d.config.OnFlush(trigger)
}
