package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	service "github.com/adrewards/coinz/internal/app"
	"github.com/adrewards/coinz/internal/domain/model"
	"github.com/adrewards/coinz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeClock is a settable clock shared with the service under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_SubmitReward(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
		svc := newStartedService(t, service.WithNow(clock.Now))

		Convey("When a first reward arrives for an unseen user", func() {
			rcpt, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", TelegramUsername: "alice", Amount: 10})

			Convey("Then the record is created with total == daily == amount", func() {
				So(err, ShouldBeNil)
				So(rcpt.CoinzTotal, ShouldEqual, 10)
				So(rcpt.CoinzDaily, ShouldEqual, 10)
				So(rcpt.Duplicate, ShouldBeFalse)
			})

			Convey("And the reset countdown is a full window", func() {
				So(rcpt.ResetInSeconds, ShouldEqual, int64(24*60*60))
			})
		})

		Convey("When rewards accumulate across a reset boundary", func() {
			_, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", Amount: 10})
			So(err, ShouldBeNil)
			rcpt, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", Amount: 5})
			So(err, ShouldBeNil)
			So(rcpt.CoinzTotal, ShouldEqual, 15)
			So(rcpt.CoinzDaily, ShouldEqual, 15)

			clock.Advance(25 * time.Hour)
			rcpt, err = svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", Amount: 2})

			Convey("Then the daily counter restarted while the total kept growing", func() {
				So(err, ShouldBeNil)
				So(rcpt.CoinzTotal, ShouldEqual, 17)
				So(rcpt.CoinzDaily, ShouldEqual, 2)
			})
		})

		Convey("When the submission is invalid", func() {
			cases := []struct {
				name   string
				reward model.Reward
			}{
				{"missing telegram id", model.Reward{Amount: 5}},
				{"zero amount", model.Reward{TelegramID: "u1", Amount: 0}},
				{"negative amount", model.Reward{TelegramID: "u1", Amount: -1}},
			}
			for _, tc := range cases {
				_, err := svc.SubmitReward(ctx, tc.reward)

				Convey("Then "+tc.name+" is rejected", func() {
					So(err, ShouldNotBeNil)
				})
			}

			Convey("And no record was mutated", func() {
				_, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "probe", Amount: 1})
				So(err, ShouldBeNil)
				page, err := svc.Leaderboard(ctx, model.KindAllTime)
				So(err, ShouldBeNil)
				So(len(page.Users), ShouldEqual, 1)
				So(page.Users[0].TelegramID, ShouldEqual, "probe")
			})
		})

		Convey("When a request id is retried", func() {
			first, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", Amount: 10, RequestID: "req-1"})
			So(err, ShouldBeNil)
			second, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", Amount: 10, RequestID: "req-1"})

			Convey("Then the retry is answered without a second increment", func() {
				So(err, ShouldBeNil)
				So(second.Duplicate, ShouldBeTrue)
				So(second.CoinzTotal, ShouldEqual, first.CoinzTotal)
			})
		})
	})
}

func TestService_ConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	svc := newStartedService(t)

	const callers = 50
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SubmitReward(ctx, model.Reward{TelegramID: "u1", Amount: 1}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	page, err := svc.Leaderboard(ctx, model.KindAllTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Users) != 1 || page.Users[0].CoinzTotal != callers {
		t.Fatalf("expected one user at total %d, got %+v", callers, page.Users)
	}
}

func TestService_Leaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a few users", t, func() {
		clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
		svc := newStartedService(t, service.WithNow(clock.Now), service.WithLeaderboardLimit(2))

		for _, r := range []model.Reward{
			{TelegramID: "u1", Amount: 30},
			{TelegramID: "u2", Amount: 10},
			{TelegramID: "u3", Amount: 20},
		} {
			_, err := svc.SubmitReward(ctx, r)
			So(err, ShouldBeNil)
		}

		Convey("When the all-time board is read", func() {
			page, err := svc.Leaderboard(ctx, model.KindAllTime)

			Convey("Then it is descending and capped at the configured limit", func() {
				So(err, ShouldBeNil)
				So(page.Kind, ShouldEqual, model.KindAllTime)
				So(len(page.Users), ShouldEqual, 2)
				So(page.Users[0].TelegramID, ShouldEqual, "u1")
				So(page.Users[1].TelegramID, ShouldEqual, "u3")
			})
		})

		Convey("When the window elapses with no submissions in between", func() {
			clock.Advance(25 * time.Hour)
			page, err := svc.Leaderboard(ctx, model.KindDaily)

			Convey("Then the daily board shows everyone at zero, not excluded", func() {
				So(err, ShouldBeNil)
				So(len(page.Users), ShouldEqual, 2)
				for _, u := range page.Users {
					So(u.CoinzDaily, ShouldEqual, 0)
					So(u.CoinzTotal, ShouldBeGreaterThan, 0)
				}
			})

			Convey("And the countdown points at the next grid boundary", func() {
				// Window seeded at +24h from first submission, advanced one
				// interval on the fixed grid; one hour past means 23h left.
				So(page.ResetInSeconds, ShouldEqual, int64(23*60*60))
			})
		})
	})
}

func TestService_StatsLifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("Before start it reports not started", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Before start the operations refuse to run", func() {
			_, err := svc.SubmitReward(context.Background(), model.Reward{TelegramID: "u1", Amount: 1})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.Leaderboard(context.Background(), model.KindAllTime)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("After start it reports user counts", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			defer svc.Stop()

			_, err := svc.SubmitReward(context.Background(), model.Reward{TelegramID: "u1", Amount: 1})
			So(err, ShouldBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["totalUsers"], ShouldEqual, int64(1))
		})
	})
}

// failing store only to confirm a recorded request id is released when the
// increment fails, keeping the retry path open.
type failingStore struct {
	*failWindow
}

type failWindow struct{}

func (f *failWindow) Window(context.Context) (time.Time, bool, error) { return time.Time{}, false, nil }
func (f *failWindow) SeedWindow(_ context.Context, next time.Time) (time.Time, error) {
	return next, nil
}
func (f *failWindow) AdvanceWindow(context.Context, time.Time, time.Time) (bool, error) {
	return false, nil
}
func (f *failWindow) ResetDaily(context.Context) (int64, error) { return 0, nil }

var errStoreDown = errors.New("store down")

func (f failingStore) AddReward(context.Context, string, string, float64) (model.User, error) {
	return model.User{}, errStoreDown
}
func (f failingStore) GetUser(context.Context, string) (model.User, error) {
	return model.User{}, errStoreDown
}
func (f failingStore) TopN(context.Context, model.LeaderboardKind, int) ([]model.User, error) {
	return nil, errStoreDown
}
func (f failingStore) CountUsers(context.Context) (int64, error) { return 0, errStoreDown }

func TestService_FailedIncrementReleasesRequestID(t *testing.T) {
	ctx := context.Background()
	svc := newStartedService(t, service.WithStore(failingStore{&failWindow{}}))

	r := model.Reward{TelegramID: "u1", Amount: 1, RequestID: "req-1"}
	if _, err := svc.SubmitReward(ctx, r); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}

	// The retry must reach the store again instead of being answered as a
	// duplicate of the failed attempt.
	if _, err := svc.SubmitReward(ctx, r); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error on retry, got %v", err)
	}
}
