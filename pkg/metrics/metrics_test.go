package metrics_test

import (
	"testing"

	"github.com/acmx/sheetboard/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager_New(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When creating a manager against it", func() {
			m := metrics.NewManager(
				metrics.WithNamespace("testns"),
				metrics.WithSubsystem("testsub"),
				metrics.WithPrometheusRegistry(reg),
			)

			Convey("Then the manager should be created", func() {
				So(m, ShouldNotBeNil)
			})

			Convey("And the registry should gather without error", func() {
				_, err := reg.Gather()
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain metrics", func() {
			// None of these should panic.
			metrics.RecordBackendCall("read_cell")
			metrics.RecordBackendError("write_cell")
			metrics.RecordBackendLatency(12.5)
			metrics.RecordCacheHit()
			metrics.RecordCacheMiss()
			metrics.UpdateTeamsTotal(4)
			metrics.UpdateEventsTotal(6)
			metrics.RecordScoreAdjustment()
			metrics.RecordJudgement("answer", true)
			metrics.RecordJudgement("flag", false)
			metrics.RecordAwardGranted()
			metrics.RecordAwardSkipped()
			metrics.RecordTokenIssued()
			metrics.RecordTokenRetry()
			metrics.RecordActivityRecord()
			metrics.RecordHTTPRequest("scoreboard", "GET", "200")
			metrics.RecordHTTPRequestDuration("scoreboard", "GET", "200", 3.2)

			Convey("Then the custom registry should gather them", func() {
				families, err := metrics.GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
