// Package shutdown combines several termination signal sources into a
// single first-wins event. The coordinator is the cancellation trigger for
// the rest of the process; it carries no cancellation input of its own.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Source installs a termination signal source and returns a channel that
// receives (or is closed) when the signal fires. Installation may fail on
// platforms that do not support the underlying mechanism.
type Source func() (<-chan struct{}, error)

// Signals returns a Source backed by os/signal notification for the given
// signals.
func Signals(sigs ...os.Signal) Source {
	return func() (<-chan struct{}, error) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, sigs...)

		fired := make(chan struct{})
		go func() {
			<-ch
			close(fired)
		}()
		return fired, nil
	}
}

// Never returns a Source that installs successfully and never fires. It is
// the substitute for signal kinds a platform cannot provide.
func Never() Source {
	return func() (<-chan struct{}, error) {
		return make(chan struct{}), nil
	}
}

// Coordinator resolves exactly once, when the first of its sources fires.
type Coordinator struct {
	done chan struct{}
	once sync.Once
}

// New installs every source and starts watching them. A source that fails
// to install is logged and replaced with a never-firing placeholder so the
// remaining sources keep working. With no sources given, the coordinator
// watches interrupt and termination requests.
func New(log *zap.Logger, sources ...Source) *Coordinator {
	if len(sources) == 0 {
		sources = []Source{
			Signals(os.Interrupt),
			Signals(syscall.SIGTERM),
		}
	}

	c := &Coordinator{done: make(chan struct{})}
	for i, install := range sources {
		fired, err := install()
		if err != nil {
			log.Warn("shutdown signal source failed to install; continuing without it",
				zap.Int("source", i),
				zap.Error(err))
			fired, _ = Never()()
		}

		go func(fired <-chan struct{}) {
			<-fired
			// First source wins; later arrivals are no-ops.
			c.once.Do(func() { close(c.done) })
		}(fired)
	}
	return c
}

// Done exposes the combined event for select loops. The channel is closed
// when the first source fires and stays closed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the combined event resolves. Calling Wait again after
// resolution returns immediately.
func (c *Coordinator) Wait() {
	<-c.done
}
