package epoch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adrewards/coinz/internal/domain/epoch"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeStore is a scriptable window store for exercising the policy paths.
type fakeStore struct {
	mu        sync.Mutex
	window    time.Time
	windowSet bool
	resets    int
	casDenied bool // force the CAS-loser path
}

func (f *fakeStore) Window(context.Context) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window, f.windowSet, nil
}

func (f *fakeStore) SeedWindow(_ context.Context, next time.Time) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.windowSet {
		return f.window, nil
	}
	f.window = next
	f.windowSet = true
	return next, nil
}

func (f *fakeStore) AdvanceWindow(_ context.Context, prev, next time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.casDenied {
		// Simulate a concurrent winner that already advanced.
		f.window = next
		return false, nil
	}
	if !f.windowSet || !f.window.Equal(prev) {
		return false, nil
	}
	f.window = next
	return true, nil
}

func (f *fakeStore) ResetDaily(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return 3, nil
}

func TestPolicy_Ensure(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given no persisted window", t, func() {
		store := &fakeStore{}
		now := base
		p := epoch.New(store, epoch.WithNow(func() time.Time { return now }))

		Convey("When Ensure runs", func() {
			next, err := p.Ensure(ctx)

			Convey("Then it seeds at now + 24h without resetting anyone", func() {
				So(err, ShouldBeNil)
				So(next.Equal(base.Add(24*time.Hour)), ShouldBeTrue)
				So(store.resets, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a window still in the future", t, func() {
		store := &fakeStore{window: base.Add(time.Hour), windowSet: true}
		p := epoch.New(store, epoch.WithNow(func() time.Time { return base }))

		Convey("When Ensure runs", func() {
			next, err := p.Ensure(ctx)

			Convey("Then the value is returned unchanged", func() {
				So(err, ShouldBeNil)
				So(next.Equal(base.Add(time.Hour)), ShouldBeTrue)
				So(store.resets, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an elapsed window", t, func() {
		prev := base.Add(-time.Minute)
		store := &fakeStore{window: prev, windowSet: true}
		p := epoch.New(store, epoch.WithNow(func() time.Time { return base }))

		Convey("When Ensure runs", func() {
			next, err := p.Ensure(ctx)

			Convey("Then it advances exactly one interval from the previous value", func() {
				So(err, ShouldBeNil)
				So(next.Equal(prev.Add(24*time.Hour)), ShouldBeTrue)
			})

			Convey("And the bulk reset ran once", func() {
				So(store.resets, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a window several days stale", t, func() {
		prev := base.Add(-3*24*time.Hour - time.Hour)
		store := &fakeStore{window: prev, windowSet: true}
		p := epoch.New(store, epoch.WithNow(func() time.Time { return base }))

		Convey("When Ensure runs", func() {
			next, err := p.Ensure(ctx)

			Convey("Then it catches up on the fixed grid, landing in the future", func() {
				So(err, ShouldBeNil)
				So(next.After(base), ShouldBeTrue)
				So(next.Sub(prev)%(24*time.Hour), ShouldEqual, time.Duration(0))
				So(next.Sub(base), ShouldBeLessThanOrEqualTo, 24*time.Hour)
			})

			Convey("And only one reset ran despite the multi-day gap", func() {
				So(store.resets, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a concurrent winner already advanced the window", t, func() {
		prev := base.Add(-time.Minute)
		store := &fakeStore{window: prev, windowSet: true, casDenied: true}
		p := epoch.New(store, epoch.WithNow(func() time.Time { return base }))

		Convey("When Ensure loses the CAS", func() {
			next, err := p.Ensure(ctx)

			Convey("Then it adopts the fresh window and skips the reset", func() {
				So(err, ShouldBeNil)
				So(next.Equal(prev.Add(24*time.Hour)), ShouldBeTrue)
				So(store.resets, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a custom interval", t, func() {
		store := &fakeStore{}
		p := epoch.New(store,
			epoch.WithNow(func() time.Time { return base }),
			epoch.WithInterval(time.Hour),
		)

		Convey("When Ensure seeds", func() {
			next, err := p.Ensure(ctx)

			Convey("Then the interval is honored", func() {
				So(err, ShouldBeNil)
				So(next.Equal(base.Add(time.Hour)), ShouldBeTrue)
			})
		})
	})
}

func TestPolicy_Remaining(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a policy with a fixed clock", t, func() {
		p := epoch.New(&fakeStore{}, epoch.WithNow(func() time.Time { return base }))

		Convey("Then remaining seconds floor toward zero", func() {
			So(p.Remaining(base.Add(90*time.Second+500*time.Millisecond)), ShouldEqual, 90)
		})

		Convey("Then an elapsed instant clamps at zero", func() {
			So(p.Remaining(base.Add(-time.Second)), ShouldEqual, 0)
			So(p.Remaining(base), ShouldEqual, 0)
		})
	})
}
