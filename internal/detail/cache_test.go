package detail

import (
	"context"
	"errors"
	"testing"
	"time"

	"thermal-scene/internal/api"
)

type fakeSource struct {
	calls  int
	err    error
	result *api.PointDetail
}

func (f *fakeSource) FetchDetail(ctx context.Context, id string, mode api.MetricMode) (*api.PointDetail, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &api.PointDetail{PointID: id, CurrentValue: 42}, nil
}

// harness runs dispatched completions on the test goroutine, standing in for
// the UI thread.
type harness struct {
	ch chan func()
}

func newHarness() *harness {
	return &harness{ch: make(chan func(), 16)}
}

func (h *harness) dispatch(f func()) { h.ch <- f }

func (h *harness) drain(t *testing.T) {
	t.Helper()
	select {
	case f := <-h.ch:
		f()
	case <-time.After(2 * time.Second):
		t.Fatal("no completion dispatched")
	}
}

func TestFetchCachesAndDeduplicates(t *testing.T) {
	src := &fakeSource{}
	h := newHarness()
	c := NewCache(src, h.dispatch)

	var got []*api.PointDetail
	cb := func(d *api.PointDetail) { got = append(got, d) }

	c.Fetch(context.Background(), "S1", api.ModeGeneral, cb)
	// Second request for the same key while in flight must not issue another
	// network call.
	c.Fetch(context.Background(), "S1", api.ModeGeneral, cb)
	h.drain(t)

	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
	if len(got) != 2 {
		t.Errorf("callbacks = %d, want both waiters served", len(got))
	}

	// Cache hit: served synchronously, no further request.
	c.Fetch(context.Background(), "S1", api.ModeGeneral, cb)
	if src.calls != 1 {
		t.Errorf("cache hit issued a request (calls = %d)", src.calls)
	}
	if len(got) != 3 {
		t.Errorf("cache hit did not invoke callback")
	}
}

func TestFetchKeyedByMode(t *testing.T) {
	src := &fakeSource{}
	h := newHarness()
	c := NewCache(src, h.dispatch)

	c.Fetch(context.Background(), "S1", api.ModeGeneral, func(*api.PointDetail) {})
	h.drain(t)
	c.Fetch(context.Background(), "S1", api.ModeTemperature, func(*api.PointDetail) {})
	h.drain(t)

	if src.calls != 2 {
		t.Errorf("source calls = %d, want one per mode", src.calls)
	}
	if c.Len() != 2 {
		t.Errorf("cache len = %d, want 2", c.Len())
	}
}

func TestFetchFailureLeavesNoEntry(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	h := newHarness()
	c := NewCache(src, h.dispatch)

	called := false
	c.Fetch(context.Background(), "S1", api.ModeGeneral, func(*api.PointDetail) { called = true })
	h.drain(t)

	if called {
		t.Error("callback must not fire on failure")
	}
	if c.Len() != 0 {
		t.Error("failed fetch must not populate the cache")
	}

	// The key is retryable after a failure.
	src.err = nil
	c.Fetch(context.Background(), "S1", api.ModeGeneral, func(*api.PointDetail) { called = true })
	h.drain(t)
	if !called {
		t.Error("retry after failure did not complete")
	}
}

func TestStaleResponseStillCached(t *testing.T) {
	// The hovered id moving on does not stop the response from landing in
	// the cache; presentation-level revalidation is the caller's job.
	src := &fakeSource{}
	h := newHarness()
	c := NewCache(src, h.dispatch)

	active := "S1"
	delivered := ""
	c.Fetch(context.Background(), "S1", api.ModeGeneral, func(d *api.PointDetail) {
		if d.PointID == active {
			delivered = d.PointID
		}
	})

	active = "S2" // pointer moved before the response arrived
	h.drain(t)

	if delivered != "" {
		t.Error("guarded callback must not act on a stale id")
	}
	if _, ok := c.Get("S1", api.ModeGeneral); !ok {
		t.Error("stale response must still update the cache")
	}
}

func TestInvalidate(t *testing.T) {
	src := &fakeSource{}
	h := newHarness()
	c := NewCache(src, h.dispatch)

	c.Fetch(context.Background(), "S1", api.ModeGeneral, func(*api.PointDetail) {})
	h.drain(t)

	c.Invalidate()
	if c.Len() != 0 {
		t.Error("Invalidate left entries behind")
	}

	c.Fetch(context.Background(), "S1", api.ModeGeneral, func(*api.PointDetail) {})
	h.drain(t)
	if src.calls != 2 {
		t.Errorf("post-invalidate fetch should hit the network (calls = %d)", src.calls)
	}
}
