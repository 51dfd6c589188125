package model_test

import (
	"math"
	"testing"

	"github.com/adrewards/coinz/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRewardValidate(t *testing.T) {
	Convey("Given a well-formed reward", t, func() {
		r := model.Reward{TelegramID: "12345", TelegramUsername: "alice", Amount: 10}

		Convey("Then it validates", func() {
			So(r.Validate(), ShouldBeNil)
		})
	})

	Convey("Given rewards with missing or malformed fields", t, func() {
		cases := []struct {
			name   string
			reward model.Reward
		}{
			{"empty telegram id", model.Reward{Amount: 5}},
			{"whitespace telegram id", model.Reward{TelegramID: "   ", Amount: 5}},
			{"zero amount", model.Reward{TelegramID: "u1", Amount: 0}},
			{"negative amount", model.Reward{TelegramID: "u1", Amount: -3}},
			{"NaN amount", model.Reward{TelegramID: "u1", Amount: math.NaN()}},
			{"positive infinity", model.Reward{TelegramID: "u1", Amount: math.Inf(1)}},
			{"negative infinity", model.Reward{TelegramID: "u1", Amount: math.Inf(-1)}},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is rejected", func() {
				So(tc.reward.Validate(), ShouldNotBeNil)
			})
		}
	})
}

func TestParseLeaderboardKind(t *testing.T) {
	Convey("Given leaderboard type query values", t, func() {
		Convey("Then daily parses to daily", func() {
			So(model.ParseLeaderboardKind("daily"), ShouldEqual, model.KindDaily)
		})

		Convey("Then alltime parses to alltime", func() {
			So(model.ParseLeaderboardKind("alltime"), ShouldEqual, model.KindAllTime)
		})

		Convey("Then anything unrecognized defaults to alltime", func() {
			So(model.ParseLeaderboardKind(""), ShouldEqual, model.KindAllTime)
			So(model.ParseLeaderboardKind("weekly"), ShouldEqual, model.KindAllTime)
			So(model.ParseLeaderboardKind("DAILY"), ShouldEqual, model.KindAllTime)
		})
	})
}
