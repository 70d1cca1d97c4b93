package mapkit

import (
	"context"
	"sync"

	"github.com/mapstation/mapkit/pkg/errors"
	"github.com/mapstation/mapkit/pkg/maps"
)

// Constructor builds an independent Map facade against the loaded
// widget. A Loader hands the same constructor to every waiter.
type Constructor func(opts ...Option) (*Map, error)

// Loader publishes the Map constructor exactly once, after whatever
// process loads the external widget script reports in. It replaces the
// ambient module-global deferred of the source system: whoever wires the
// widget owns the Loader and settles it.
//
// A Loader settles once. Resolve delivers a constructor to all current
// and future waiters; Fail delivers a terminal error instead. There is
// no retry and no timeout on the load itself.
type Loader struct {
	once sync.Once
	done chan struct{}

	ctor Constructor
	err  error
}

// NewLoader creates an unsettled Loader.
func NewLoader() *Loader {
	return &Loader{done: make(chan struct{})}
}

// Resolve settles the Loader with a constructor bound to the loaded
// driver. Only the first settlement wins; later calls are no-ops.
func (l *Loader) Resolve(driver maps.Driver) {
	l.once.Do(func() {
		l.ctor = func(opts ...Option) (*Map, error) {
			return New(driver, opts...)
		}
		close(l.done)
	})
}

// Fail settles the Loader with a terminal load error. Only the first
// settlement wins; later calls are no-ops.
func (l *Loader) Fail(err error) {
	l.once.Do(func() {
		if err == nil {
			err = errors.ErrLoadFailed
		}
		l.err = err
		close(l.done)
	})
}

// Wait blocks until the Loader settles or ctx is done. Any number of
// consumers may wait; each receives the same constructor (or the same
// terminal error) and constructs independent facades from it.
func (l *Loader) Wait(ctx context.Context) (Constructor, error) {
	select {
	case <-l.done:
		return l.ctor, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the Loader has resolved or failed.
func (l *Loader) Settled() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
