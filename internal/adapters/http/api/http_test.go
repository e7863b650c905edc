package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/adapters/http/api"
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

// newTestMux wires the API over a started service on in-memory
// sheets. The clock ticks one second per call so the snapshot cache
// never hides a write from the next request.
func newTestMux() *http.ServeMux {
	wb := grid.NewMemWorkbook(1)
	seedSheet(wb.Problems[0].(*grid.MemGrid), [][]string{
		{"part a"},
		{"42"},
	})
	seedSheet(wb.CTF.(*grid.MemGrid), [][]string{
		{"web", "rev"},
		{"flagone", "flagtwo"},
	})

	t := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		t = t.Add(time.Second)
		return t
	}
	svc := service.New(wb,
		service.WithClock(clock),
		service.WithCacheTTL(time.Millisecond),
		service.WithPointValues(map[string]int{"1a": 10}),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux
}

func seedSheet(g *grid.MemGrid, rows [][]string) {
	for _, row := range rows {
		if err := g.AppendRow(context.Background(), row); err != nil {
			panic(err)
		}
	}
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, v any) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		panic(err)
	}
}

func TestHome(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newTestMux()

		Convey("Then the root greets", func() {
			rec := do(mux, http.MethodGet, "/")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Welcome")
		})

		Convey("And unknown paths 404", func() {
			rec := do(mux, http.MethodGet, "/nope")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And health reports ok", func() {
			rec := do(mux, http.MethodGet, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And metrics are served", func() {
			rec := do(mux, http.MethodGet, "/metrics")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats are served", func() {
			rec := do(mux, http.MethodGet, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			decode(rec, &stats)
			So(stats["started"], ShouldBeTrue)
		})
	})
}

func TestTeamEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newTestMux()

		Convey("When creating a team", func() {
			rec := do(mux, http.MethodPost, "/create_team?team_name=foxes&member_name=alice")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var res struct {
				Token    string `json:"token"`
				TeamName string `json:"team_name"`
			}
			decode(rec, &res)
			So(res.Token, ShouldNotBeEmpty)
			So(res.TeamName, ShouldEqual, "foxes")

			Convey("Then the team cookie is set", func() {
				cookies := rec.Result().Cookies()
				So(cookies, ShouldHaveLength, 1)
				So(cookies[0].Name, ShouldEqual, "team")
				So(cookies[0].Value, ShouldEqual, "foxes")
			})

			Convey("And the token resolves back to the team", func() {
				rec := do(mux, http.MethodGet, "/token_lookup?token="+res.Token)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body map[string]string
				decode(rec, &body)
				So(body["team"], ShouldEqual, "foxes")
			})

			Convey("And creating it again is rejected with a bodiless 304", func() {
				rec := do(mux, http.MethodPost, "/create_team?team_name=foxes&member_name=bob")
				So(rec.Code, ShouldEqual, http.StatusNotModified)
				So(rec.Body.Len(), ShouldEqual, 0)
			})

			Convey("And the team can be renamed", func() {
				rec := do(mux, http.MethodPost, "/change_team_name?team_name=foxes&new_name=wolves")
				So(rec.Code, ShouldEqual, http.StatusOK)

				rec = do(mux, http.MethodGet, "/scores/wolves")
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When parameters are missing", func() {
			rec := do(mux, http.MethodPost, "/create_team?team_name=foxes")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the name is too short", func() {
			rec := do(mux, http.MethodPost, "/create_team?team_name=x&member_name=alice")
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When looking up an unknown token", func() {
			rec := do(mux, http.MethodGet, "/token_lookup?token=nosuchtoken")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When using the wrong method", func() {
			rec := do(mux, http.MethodGet, "/create_team?team_name=foxes&member_name=alice")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoreEndpoints(t *testing.T) {
	Convey("Given the API with a team and an event", t, func() {
		mux := newTestMux()
		So(do(mux, http.MethodPost, "/create_team?team_name=foxes&member_name=alice").Code, ShouldEqual, http.StatusOK)
		So(do(mux, http.MethodPost, "/create_event?event_name=day-one").Code, ShouldEqual, http.StatusOK)

		Convey("When setting a score", func() {
			rec := do(mux, http.MethodPost, "/set_score?event_name=day-one&team_name=foxes&score=7")
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then the single score reads back", func() {
				rec := do(mux, http.MethodGet, "/scores/foxes/day-one")
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Score int `json:"score"`
				}
				decode(rec, &body)
				So(body.Score, ShouldEqual, 7)
			})

			Convey("And the score map reads back", func() {
				rec := do(mux, http.MethodGet, "/scores/foxes")
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Scores map[string]int `json:"scores"`
				}
				decode(rec, &body)
				So(body.Scores["day-one"], ShouldEqual, 7)
			})
		})

		Convey("When adjusting a score", func() {
			rec := do(mux, http.MethodPost, "/adjust_score?event_name=day-one&team_name=foxes&delta=5")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Score int `json:"score"`
			}
			decode(rec, &body)
			So(body.Score, ShouldEqual, 5)

			Convey("Then the time series sees the adjustment", func() {
				rec := do(mux, http.MethodGet, "/timeseries")
				So(rec.Code, ShouldEqual, http.StatusOK)
				var series struct {
					Teams []string         `json:"teams"`
					Ys    map[string][]int `json:"ys"`
				}
				decode(rec, &series)
				So(series.Teams, ShouldResemble, []string{"foxes"})
				So(series.Ys["foxes"], ShouldResemble, []int{5})
			})
		})

		Convey("When reading the scoreboard", func() {
			rec := do(mux, http.MethodGet, "/scoreboard")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var board struct {
				Teams  []string `json:"teams"`
				Events []string `json:"events"`
			}
			decode(rec, &board)
			So(board.Teams, ShouldResemble, []string{"foxes"})
			So(board.Events, ShouldResemble, []string{"day-one"})
		})

		Convey("When the team is unknown", func() {
			rec := do(mux, http.MethodGet, "/scores/ghosts")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the delta is not an integer", func() {
			rec := do(mux, http.MethodPost, "/adjust_score?event_name=day-one&team_name=foxes&delta=two")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When creating a duplicate event", func() {
			rec := do(mux, http.MethodPost, "/create_event?event_name=day-one")
			So(rec.Code, ShouldEqual, http.StatusNotModified)
			So(rec.Body.Len(), ShouldEqual, 0)
		})
	})
}

func TestSubmissionEndpoints(t *testing.T) {
	Convey("Given the API with a team and the award bucket", t, func() {
		mux := newTestMux()
		rec := do(mux, http.MethodPost, "/create_team?team_name=foxes&member_name=alice")
		So(rec.Code, ShouldEqual, http.StatusOK)
		var created struct {
			Token string `json:"token"`
		}
		decode(rec, &created)
		So(do(mux, http.MethodPost, "/create_event?event_name=woc0").Code, ShouldEqual, http.StatusOK)

		Convey("When submitting the right answer", func() {
			rec := do(mux, http.MethodPost, "/submit?token="+created.Token+"&problem=1a&input_index=0&output=42")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Team    string `json:"team"`
				Correct bool   `json:"correct"`
			}
			decode(rec, &body)
			So(body.Team, ShouldEqual, "foxes")
			So(body.Correct, ShouldBeTrue)

			Convey("Then the bucket is credited", func() {
				rec := do(mux, http.MethodGet, "/scores/foxes/woc0")
				var sc struct {
					Score int `json:"score"`
				}
				decode(rec, &sc)
				So(sc.Score, ShouldEqual, 10)
			})
		})

		Convey("When submitting with a bad token", func() {
			rec := do(mux, http.MethodPost, "/submit?token=bogus&problem=1a&input_index=0&output=42")
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When submitting a malformed problem id", func() {
			rec := do(mux, http.MethodPost, "/submit?token="+created.Token+"&problem=zz&input_index=0&output=42")
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When submitting a flag", func() {
			rec := do(mux, http.MethodPost, "/flag?token="+created.Token+"&category=web&problem_index=0&flag=flagone")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Correct bool `json:"correct"`
			}
			decode(rec, &body)
			So(body.Correct, ShouldBeTrue)

			Convey("Then the solved list includes it", func() {
				rec := do(mux, http.MethodGet, "/solved?token="+created.Token+"&category=web")
				So(rec.Code, ShouldEqual, http.StatusOK)
				var solved struct {
					Solved []int `json:"solved"`
				}
				decode(rec, &solved)
				So(solved.Solved, ShouldResemble, []int{0})
			})
		})

		Convey("When submitting a wrong flag", func() {
			rec := do(mux, http.MethodPost, "/flag?token="+created.Token+"&category=web&problem_index=0&flag=nope")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Correct bool `json:"correct"`
			}
			decode(rec, &body)
			So(body.Correct, ShouldBeFalse)
		})
	})
}
