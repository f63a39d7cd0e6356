package dispatcher

import (
	"context"
	"errors"
)

type fanout []Sink

// Fanout sends every chunk to all sinks. A failing sink does not stop the others.
func Fanout(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return fanout(sinks)
}

func (f fanout) Send(ctx context.Context, chunk string) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Send(ctx, chunk); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
