package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/caplink/userpulse/internal/adapters/api"
	"github.com/caplink/userpulse/internal/adapters/notify"
	"github.com/caplink/userpulse/internal/adapters/report"
	service "github.com/caplink/userpulse/internal/app"
	"github.com/caplink/userpulse/internal/mockapi"
	. "github.com/smartystreets/goconvey/convey"
)

// startMockAPI serves the given mock server over a real listener.
func startMockAPI(t *testing.T, mock *mockapi.Server) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mock.Register(context.Background(), mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service wired against the mock API", t, func() {
		mock := mockapi.New(
			mockapi.WithUserCount(5),
			mockapi.WithPostCount(30),
			mockapi.WithSeed(7),
		)
		ts := startMockAPI(t, mock)
		outputDir := t.TempDir()

		svc := service.New(
			service.WithBaseURL(ts.URL),
			service.WithPageSize(10),
			service.WithMaxRetries(2),
			service.WithBackoff(time.Millisecond, 4*time.Millisecond),
			service.WithOutputDir(outputDir),
			service.WithFormats(report.FormatPDF, report.FormatXLSX),
			service.WithNotifier(notify.New(notify.WithDelay(time.Millisecond))),
			service.WithEmail("qa@caplink.example"),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When running the pipeline end-to-end", func() {
			result, err := svc.Run(ctx)

			Convey("Then the run should succeed", func() {
				So(err, ShouldBeNil)
				So(result, ShouldNotBeNil)
				So(result.RunID, ShouldNotBeEmpty)
			})

			Convey("And every fixture record should arrive through pagination", func() {
				So(result.UsersFetched, ShouldEqual, 5)
				So(result.PostsFetched, ShouldEqual, 30)
				So(result.UsersValid, ShouldEqual, 5)
				So(result.PostsValid, ShouldEqual, 30)
				So(result.UsersRejected, ShouldEqual, 0)
				So(result.PostsRejected, ShouldEqual, 0)
				So(result.OrphansDropped, ShouldEqual, 0)
			})

			Convey("And metrics should cover all users in descending post order", func() {
				So(len(result.Metrics), ShouldEqual, 5)

				total := 0
				for i, m := range result.Metrics {
					total += m.TotalPosts
					if i > 0 {
						So(m.TotalPosts, ShouldBeLessThanOrEqualTo, result.Metrics[i-1].TotalPosts)
					}
				}
				So(total, ShouldEqual, 30)
			})

			Convey("And both report files should exist on disk", func() {
				So(len(result.ReportPaths), ShouldEqual, 2)
				for _, path := range result.ReportPaths {
					_, statErr := os.Stat(path)
					So(statErr, ShouldBeNil)
					So(filepath.Dir(path), ShouldEqual, outputDir)
				}
				So(strings.HasSuffix(result.ReportPaths[0], ".pdf"), ShouldBeTrue)
				So(strings.HasSuffix(result.ReportPaths[1], ".xlsx"), ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_Retries(t *testing.T) {
	Convey("Given a mock API that fails its first two requests", t, func() {
		mock := mockapi.New(
			mockapi.WithUserCount(5),
			mockapi.WithPostCount(30),
			mockapi.WithFailFirst(2),
		)
		ts := startMockAPI(t, mock)

		svc := service.New(
			service.WithBaseURL(ts.URL),
			service.WithPageSize(10),
			service.WithMaxRetries(2),
			service.WithBackoff(time.Millisecond, 4*time.Millisecond),
			service.WithOutputDir(t.TempDir()),
			service.WithFormats(report.FormatXLSX),
		)

		Convey("When running the pipeline", func() {
			result, err := svc.Run(context.Background())

			Convey("Then retries should absorb the failures", func() {
				So(err, ShouldBeNil)
				So(result.UsersFetched, ShouldEqual, 5)
				So(result.PostsFetched, ShouldEqual, 30)

				// 2 failed tries, 1 users page, 3 full + 1 short posts page.
				So(mock.Requests(), ShouldEqual, 7)
			})
		})
	})

	Convey("Given a mock API that never recovers", t, func() {
		mock := mockapi.New(mockapi.WithFailFirst(1000))
		ts := startMockAPI(t, mock)

		svc := service.New(
			service.WithBaseURL(ts.URL),
			service.WithMaxRetries(1),
			service.WithBackoff(time.Millisecond, 2*time.Millisecond),
			service.WithOutputDir(t.TempDir()),
		)

		Convey("When running the pipeline", func() {
			result, err := svc.Run(context.Background())

			Convey("Then the run should give up after exhausting retries", func() {
				So(err, ShouldNotBeNil)
				So(result, ShouldBeNil)

				var netErr *api.NetworkError
				So(errors.As(err, &netErr), ShouldBeTrue)
				So(netErr.Attempts, ShouldEqual, 2)
				So(mock.Requests(), ShouldEqual, 2)
			})
		})
	})
}

func TestServiceIntegration_DirtyRecords(t *testing.T) {
	Convey("Given fixture records with invalid and orphaned entries", t, func() {
		users := []json.RawMessage{
			json.RawMessage(`{"id": 1, "name": "Leanne Graham", "email": "leanne@april.biz"}`),
			json.RawMessage(`{"id": 2, "name": "Ervin Howell", "email": "ervin@melissa.tv"}`),
			json.RawMessage(`{"name": "No ID", "email": "no@id.example"}`),
		}
		posts := []json.RawMessage{
			json.RawMessage(`{"id": 1, "userId": 1, "title": "sunt aut", "body": "abc"}`),
			json.RawMessage(`{"id": 2, "userId": 1, "title": "qui est", "body": "de"}`),
			json.RawMessage(`{"id": 3, "userId": 99, "title": "orphan", "body": "zzz"}`),
			json.RawMessage(`{"id": 4, "userId": 2, "title": ""}`),
		}
		mock := mockapi.New(mockapi.WithRecords(users, posts))
		ts := startMockAPI(t, mock)

		svc := service.New(
			service.WithBaseURL(ts.URL),
			service.WithOutputDir(t.TempDir()),
			service.WithFormats(report.FormatXLSX),
		)

		Convey("When running the pipeline", func() {
			result, err := svc.Run(context.Background())

			Convey("Then bad records should be rejected and orphans dropped", func() {
				So(err, ShouldBeNil)
				So(result.UsersValid, ShouldEqual, 2)
				So(result.UsersRejected, ShouldEqual, 1)
				So(result.PostsValid, ShouldEqual, 3)
				So(result.PostsRejected, ShouldEqual, 1)
				So(result.OrphansDropped, ShouldEqual, 1)
			})

			Convey("And the surviving users should be aggregated", func() {
				So(len(result.Metrics), ShouldEqual, 2)
				So(result.Metrics[0].UserID, ShouldEqual, 1)
				So(result.Metrics[0].TotalPosts, ShouldEqual, 2)
				So(result.Metrics[0].AvgChars, ShouldEqual, 2.5)
				So(result.Metrics[1].UserID, ShouldEqual, 2)
				So(result.Metrics[1].TotalPosts, ShouldEqual, 0)
			})
		})
	})
}
