package ovh

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock is the local time source used to timestamp signed requests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the local wall clock.
var SystemClock Clock = systemClock{}

// deltaCell holds the offset between the server clock and the local clock. It is
// filled by the first successful fetch and never changes afterwards. A failed
// fetch leaves it empty.
type deltaCell struct {
	mu    sync.Mutex
	set   bool
	value int64

	group singleflight.Group
}

func (d *deltaCell) cached() (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.set
}

// get returns the cached delta or runs fetch. Concurrent callers share a single
// in-flight fetch; fetch receives a context detached from ctx so one caller
// giving up does not fail the others.
func (d *deltaCell) get(ctx context.Context, fetch func(context.Context) (int64, error)) (int64, error) {
	if v, ok := d.cached(); ok {
		return v, nil
	}

	ch := d.group.DoChan("delta", func() (any, error) {
		if v, ok := d.cached(); ok {
			return v, nil
		}
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return int64(0), err
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if !d.set {
			d.value, d.set = v, true
		}
		return d.value, nil
	})

	select {
	case <-ctx.Done():
		return 0, contextError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int64), nil
	}
}
