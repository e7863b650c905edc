package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	service "github.com/acmx/sheetboard/internal/app"
	"github.com/acmx/sheetboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestService builds a started service over in-memory sheets with
// one answer sheet: problem 1 part a expects "42" at input index 0 and
// "99" at index 1.
func newTestService(clock func() time.Time) (*service.Service, *grid.Workbook) {
	wb := grid.NewMemWorkbook(1)
	p1 := wb.Problems[0].(*grid.MemGrid)
	seed(p1, [][]string{
		{"part a", "part b"},
		{"42", "xyz"},
		{"99", "abc"},
	})
	ctfSheet := wb.CTF.(*grid.MemGrid)
	seed(ctfSheet, [][]string{
		{"web", "rev", "forensics", "osint", "crypto", "linux"},
		{"flagone", "r0", "f0", "o0", "c0", "l0"},
	})

	opts := []service.Option{
		service.WithPointValues(map[string]int{"1a": 10, "1b": 15}),
		service.WithBucketPrefix("woc"),
		service.WithCacheTTL(time.Millisecond),
	}
	if clock != nil {
		opts = append(opts, service.WithClock(clock))
	}
	svc := service.New(wb, opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc, wb
}

func seed(g *grid.MemGrid, rows [][]string) {
	ctx := context.Background()
	for _, row := range rows {
		if err := g.AppendRow(ctx, row); err != nil {
			panic(err)
		}
	}
}

// tickingClock advances one second per call so the snapshot cache
// never masks a write inside a test.
func tickingClock() func() time.Time {
	t := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over an in-memory workbook", t, func() {
		svc, wb := newTestService(tickingClock())

		Convey("Then the scoreboard sheet is prepared", func() {
			v, err := wb.Scoreboard.ReadCell(context.Background(), 1, 1)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "-")
		})

		Convey("And starting again is a no-op", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})

		Convey("And stats report the started state", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["answerSheets"], ShouldEqual, 1)
		})

		Convey("And stop flips the started flag", func() {
			svc.Stop()
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
		})
	})
}

func TestService_TeamsAndScores(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc, _ := newTestService(tickingClock())

		res, err := svc.CreateTeam(ctx, "foxes", "alice")
		So(err, ShouldBeNil)
		So(res.Token, ShouldNotBeEmpty)

		_, err = svc.CreateEvent(ctx, "day-one")
		So(err, ShouldBeNil)

		Convey("When setting and adjusting scores", func() {
			So(svc.SetScore(ctx, "day-one", "foxes", 7), ShouldBeNil)
			next, err := svc.AdjustScore(ctx, "day-one", "foxes", 3)
			So(err, ShouldBeNil)
			So(next, ShouldEqual, 10)

			v, err := svc.Score(ctx, "foxes", "day-one")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 10)
		})

		Convey("When resolving the issued token", func() {
			team, err := svc.TeamFromToken(ctx, res.Token)
			So(err, ShouldBeNil)
			So(team, ShouldEqual, "foxes")
		})

		Convey("When reconstructing the time series", func() {
			_, err := svc.AdjustScore(ctx, "day-one", "foxes", 5)
			So(err, ShouldBeNil)
			_, err = svc.AdjustScore(ctx, "day-one", "foxes", 2)
			So(err, ShouldBeNil)

			series, err := svc.TimeSeries(ctx)
			So(err, ShouldBeNil)
			So(series.Teams, ShouldResemble, []string{"foxes"})
			So(series.Ys["foxes"], ShouldResemble, []int{5, 7})
		})
	})
}

func TestService_SubmitAnswer(t *testing.T) {
	Convey("Given a started service with the award bucket present", t, func() {
		ctx := context.Background()
		svc, _ := newTestService(tickingClock())

		_, err := svc.CreateTeam(ctx, "foxes", "alice")
		So(err, ShouldBeNil)
		_, err = svc.CreateEvent(ctx, "woc0")
		So(err, ShouldBeNil)

		Convey("When the first correct answer lands", func() {
			ok, err := svc.SubmitAnswer(ctx, "foxes", "1a", 0, "42")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			Convey("Then the bucket is credited once", func() {
				v, err := svc.Score(ctx, "foxes", "woc0")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 10)
			})

			Convey("And a repeat solve does not double-award", func() {
				ok, err := svc.SubmitAnswer(ctx, "foxes", "1a", 1, "99")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)

				v, err := svc.Score(ctx, "foxes", "woc0")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 10)
			})
		})

		Convey("When the answer is wrong", func() {
			ok, err := svc.SubmitAnswer(ctx, "foxes", "1a", 0, "41")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			v, err := svc.Score(ctx, "foxes", "woc0")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0)
		})

		Convey("When attempts are recorded", func() {
			_, err := svc.SubmitAnswer(ctx, "foxes", "1a", 0, "41")
			So(err, ShouldBeNil)
			_, err = svc.SubmitAnswer(ctx, "foxes", "1a", 0, "42")
			So(err, ShouldBeNil)

			history, err := svc.PastSubmissions(ctx, "foxes", "1a")
			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 2)
			So(history[0].Correct, ShouldBeFalse)
			So(history[1].Correct, ShouldBeTrue)
		})
	})

	Convey("Given a service where the award bucket row is missing", t, func() {
		ctx := context.Background()
		svc, _ := newTestService(tickingClock())
		_, err := svc.CreateTeam(ctx, "foxes", "alice")
		So(err, ShouldBeNil)

		Convey("When a correct answer cannot be credited", func() {
			ok, err := svc.SubmitAnswer(ctx, "foxes", "1a", 0, "42")
			So(err, ShouldBeNil)

			Convey("Then the submission is not counted", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a service with no point value for the problem", t, func() {
		ctx := context.Background()
		wb := grid.NewMemWorkbook(1)
		seed(wb.Problems[0].(*grid.MemGrid), [][]string{
			{"part a"},
			{"42"},
		})
		svc := service.New(wb,
			service.WithPointValues(map[string]int{}),
			service.WithClock(tickingClock()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		_, err := svc.CreateTeam(ctx, "foxes", "alice")
		So(err, ShouldBeNil)
		_, err = svc.CreateEvent(ctx, "woc0")
		So(err, ShouldBeNil)

		Convey("When a correct answer lands", func() {
			ok, err := svc.SubmitAnswer(ctx, "foxes", "1a", 0, "42")
			So(err, ShouldBeNil)

			Convey("Then the award is withheld and the answer not counted", func() {
				So(ok, ShouldBeFalse)
				v, err := svc.Score(ctx, "foxes", "woc0")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0)
			})
		})
	})
}

func TestService_Flags(t *testing.T) {
	Convey("Given a started service with a CTF sheet", t, func() {
		ctx := context.Background()
		svc, _ := newTestService(tickingClock())
		_, err := svc.CreateTeam(ctx, "foxes", "alice")
		So(err, ShouldBeNil)

		Convey("When submitting the right flag", func() {
			ok, err := svc.SubmitFlag(ctx, "foxes", "web", 0, "flagone")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			solved, err := svc.SolvedFlags(ctx, "foxes", "web")
			So(err, ShouldBeNil)
			So(solved, ShouldResemble, []int{0})
		})

		Convey("When submitting a wrong flag", func() {
			ok, err := svc.SubmitFlag(ctx, "foxes", "web", 0, "nope")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			solved, err := svc.SolvedFlags(ctx, "foxes", "web")
			So(err, ShouldBeNil)
			So(solved, ShouldBeEmpty)
		})
	})
}
