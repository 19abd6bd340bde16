package mockapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/caplink/userpulse/internal/mockapi"
	"github.com/caplink/userpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// serve registers the server on a fresh mux and performs one GET.
func serve(s *mockapi.Server, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	s.Register(context.Background(), mux)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeRecords(w *httptest.ResponseRecorder) []map[string]any {
	var records []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		return nil
	}
	return records
}

func TestServer_Register(t *testing.T) {
	Convey("Given a mock API server with default fixtures", t, func() {
		server := mockapi.New()
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then the users endpoint should serve the full collection", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			So(len(decodeRecords(w)), ShouldEqual, 10)
		})

		Convey("And the posts endpoint should serve the full collection", func() {
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decodeRecords(w)), ShouldEqual, 100)
		})

		Convey("And the health endpoint should report fixture counts", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)

			var health struct {
				Status string `json:"status"`
				Users  int    `json:"users"`
				Posts  int    `json:"posts"`
			}
			So(json.NewDecoder(w.Body).Decode(&health), ShouldBeNil)
			So(health.Status, ShouldEqual, "ok")
			So(health.Users, ShouldEqual, 10)
			So(health.Posts, ShouldEqual, 100)
		})

		Convey("And unknown paths should return not found", func() {
			req := httptest.NewRequest(http.MethodGet, "/albums", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And non-GET requests should be rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServerPagination(t *testing.T) {
	Convey("Given a server with ten users", t, func() {
		server := mockapi.New(mockapi.WithPostCount(0))

		Convey("When requesting a full page", func() {
			w := serve(server, "/users?_page=1&_limit=4")

			Convey("Then it should return the page size", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodeRecords(w)), ShouldEqual, 4)
			})
		})

		Convey("When requesting the last partial page", func() {
			w := serve(server, "/users?_page=3&_limit=4")

			Convey("Then it should return the remainder", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodeRecords(w)), ShouldEqual, 2)
			})
		})

		Convey("When requesting a page past the end", func() {
			w := serve(server, "/users?_page=4&_limit=4")

			Convey("Then it should return an empty array", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When requesting a page without a limit", func() {
			w := serve(server, "/users?_page=1")

			Convey("Then it should default to ten records", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodeRecords(w)), ShouldEqual, 10)
			})
		})

		Convey("When requesting with offset params", func() {
			w := serve(server, "/users?_start=8&_limit=4")

			Convey("Then it should slice from the offset", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				records := decodeRecords(w)
				So(len(records), ShouldEqual, 2)
				So(records[0]["id"], ShouldEqual, 9)
			})
		})

		Convey("When the collection is empty", func() {
			empty := mockapi.New(mockapi.WithUserCount(0), mockapi.WithPostCount(0))
			w := serve(empty, "/users?_page=1&_limit=10")

			Convey("Then it should return an empty array", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestServerFixtures(t *testing.T) {
	Convey("Given generated fixtures", t, func() {
		server := mockapi.New(mockapi.WithUserCount(5), mockapi.WithPostCount(20))

		Convey("When fetching users", func() {
			records := decodeRecords(serve(server, "/users"))

			Convey("Then they should look like the public API records", func() {
				So(len(records), ShouldEqual, 5)
				for i, u := range records {
					So(u["id"], ShouldEqual, i+1)
					So(u["name"], ShouldNotBeEmpty)
					So(u["email"], ShouldContainSubstring, "@")

					company, ok := u["company"].(map[string]any)
					So(ok, ShouldBeTrue)
					So(company["name"], ShouldNotBeEmpty)
				}
			})
		})

		Convey("When fetching posts", func() {
			records := decodeRecords(serve(server, "/posts"))

			Convey("Then every post should reference a generated user", func() {
				So(len(records), ShouldEqual, 20)
				for _, p := range records {
					So(p["userId"], ShouldBeGreaterThanOrEqualTo, 1)
					So(p["userId"], ShouldBeLessThanOrEqualTo, 5)
					So(p["title"], ShouldNotBeEmpty)
				}
			})
		})

		Convey("When generating with the same seed twice", func() {
			a := decodeRecords(serve(mockapi.New(mockapi.WithSeed(7)), "/users"))
			b := decodeRecords(serve(mockapi.New(mockapi.WithSeed(7)), "/users"))

			Convey("Then the fixtures should be identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When generating without users", func() {
			orphanless := mockapi.New(mockapi.WithUserCount(0), mockapi.WithPostCount(50))
			records := decodeRecords(serve(orphanless, "/posts"))

			Convey("Then no posts should be generated", func() {
				So(len(records), ShouldEqual, 0)
			})
		})
	})
}

func TestServerFailureInjection(t *testing.T) {
	Convey("Given a server failing its first two collection requests", t, func() {
		server := mockapi.New(mockapi.WithFailFirst(2))
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		get := func(target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When issuing three requests", func() {
			first := get("/users")
			second := get("/users")
			third := get("/users")

			Convey("Then the first two should fail and the third succeed", func() {
				So(first.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(second.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(third.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(first.Body).Decode(&resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "injected_failure")
				So(server.Requests(), ShouldEqual, 3)
			})
		})

		Convey("When a custom failure status is configured", func() {
			flaky := mockapi.New(mockapi.WithFailFirst(1), mockapi.WithFailStatus(http.StatusBadGateway))
			w := serve(flaky, "/posts")

			Convey("Then it should answer with that status", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
			})
		})
	})
}

func TestServerInjectedRecords(t *testing.T) {
	Convey("Given a server with injected raw records", t, func() {
		users := []json.RawMessage{
			json.RawMessage(`{"id": 1, "name": "Leanne Graham", "email": "leanne@april.biz"}`),
			json.RawMessage(`{"id": 2, "name": 42}`),
		}
		posts := []json.RawMessage{
			json.RawMessage(`{"id": 1, "userId": 1, "title": "sunt aut", "body": "quia et"}`),
		}
		server := mockapi.New(mockapi.WithRecords(users, posts))

		Convey("When fetching the collections", func() {
			gotUsers := decodeRecords(serve(server, "/users"))
			gotPosts := decodeRecords(serve(server, "/posts"))

			Convey("Then the records should be served verbatim", func() {
				So(len(gotUsers), ShouldEqual, 2)
				So(gotUsers[1]["name"], ShouldEqual, 42)
				So(len(gotPosts), ShouldEqual, 1)
				So(gotPosts[0]["title"], ShouldEqual, "sunt aut")
			})
		})
	})
}
