package locations

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSuperseded = errors.New("query superseded by a newer one")

// Suggester is implemented by Resolver
type Suggester interface {
	ResolveQuery(ctx context.Context, text string) []string
}

// Debouncer holds a single in-flight suggestion slot. A new call cancels the one
// in flight, which then returns ErrSuperseded, and only runs after the window has
// passed without another call.
type Debouncer struct {
	suggester Suggester
	window    time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewDebouncer(suggester Suggester, window time.Duration) *Debouncer {
	return &Debouncer{suggester: suggester, window: window}
}

func (d *Debouncer) Suggest(ctx context.Context, query string) ([]string, error) {
	callCtx, cancel := context.WithCancel(ctx)

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	d.cancel = cancel
	d.mu.Unlock()

	defer d.release(seq, cancel)

	timer := time.NewTimer(d.window)
	defer timer.Stop()

	select {
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrSuperseded
	case <-timer.C:
	}

	results := d.suggester.ResolveQuery(callCtx, query)

	// A newer query may have arrived while the lookup ran
	if !d.current(seq) {
		return nil, ErrSuperseded
	}
	return results, nil
}

func (d *Debouncer) current(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq == seq
}

func (d *Debouncer) release(seq uint64, cancel context.CancelFunc) {
	d.mu.Lock()
	if d.seq == seq {
		d.cancel = nil
	}
	d.mu.Unlock()
	cancel()
}
