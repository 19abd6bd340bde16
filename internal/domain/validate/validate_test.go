package validate_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	validate "github.com/caplink/userpulse/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func rawUser(id any, name, email string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id": %v, "name": %q, "username": "u", "email": %q}`, id, name, email))
}

func rawPost(id, userID any, title, body string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id": %v, "userId": %v, "title": %q, "body": %q}`, id, userID, title, body))
}

func TestUsers(t *testing.T) {
	Convey("Given a batch of raw user records", t, func() {
		Convey("When every record is well-formed", func() {
			raw := []json.RawMessage{
				rawUser(1, "Leanne Graham", "leanne@example.org"),
				rawUser(2, "Ervin Howell", "ervin@example.org"),
			}

			users, errs := validate.Users(raw)

			Convey("Then all records parse and nothing is rejected", func() {
				So(errs, ShouldBeEmpty)
				So(users, ShouldHaveLength, 2)
				So(users[0].ID, ShouldEqual, 1)
				So(users[0].Name, ShouldEqual, "Leanne Graham")
				So(users[1].Email, ShouldEqual, "ervin@example.org")
			})
		})

		Convey("When one record in the middle is missing its id", func() {
			raw := []json.RawMessage{
				rawUser(1, "A", "a@example.org"),
				rawUser(2, "B", "b@example.org"),
				json.RawMessage(`{"name": "C", "email": "c@example.org"}`),
				rawUser(4, "D", "d@example.org"),
				rawUser(5, "E", "e@example.org"),
			}

			users, errs := validate.Users(raw)

			Convey("Then the other four survive and the rejection names the field", func() {
				So(users, ShouldHaveLength, 4)
				So(errs, ShouldHaveLength, 1)
				So(errs[0].Index, ShouldEqual, 2)
				So(errs[0].Field, ShouldEqual, "id")
				So(errs[0].Reason, ShouldEqual, "missing")
			})

			Convey("And input order is preserved among survivors", func() {
				So(users[0].ID, ShouldEqual, 1)
				So(users[1].ID, ShouldEqual, 2)
				So(users[2].ID, ShouldEqual, 4)
				So(users[3].ID, ShouldEqual, 5)
			})
		})

		Convey("When a record has a non-integer id", func() {
			raw := []json.RawMessage{rawUser("5.5", "A", "a@example.org")}

			users, errs := validate.Users(raw)

			So(users, ShouldBeEmpty)
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, "id")
			So(errs[0].Reason, ShouldEqual, "must be an integer")
		})

		Convey("When a record has a non-positive id", func() {
			raw := []json.RawMessage{rawUser(0, "A", "a@example.org")}

			_, errs := validate.Users(raw)

			So(errs, ShouldHaveLength, 1)
			So(errs[0].Reason, ShouldEqual, "must be positive")
		})

		Convey("When a record has a numeric name", func() {
			raw := []json.RawMessage{
				json.RawMessage(`{"id": 1, "name": 42, "email": "a@example.org"}`),
			}

			_, errs := validate.Users(raw)

			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, "name")
			So(errs[0].Reason, ShouldEqual, "must be a string")
		})

		Convey("When an email has no @", func() {
			raw := []json.RawMessage{rawUser(1, "A", "not-an-email")}

			_, errs := validate.Users(raw)

			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, "email")
			So(errs[0].Reason, ShouldEqual, "must contain @")
		})

		Convey("When a record is not a JSON object", func() {
			raw := []json.RawMessage{
				json.RawMessage(`"just a string"`),
				json.RawMessage(`[1, 2, 3]`),
			}

			users, errs := validate.Users(raw)

			So(users, ShouldBeEmpty)
			So(errs, ShouldHaveLength, 2)
			So(errs[0].Field, ShouldBeEmpty)
			So(errs[0].Reason, ShouldEqual, "not a JSON object")
		})

		Convey("When the company comes as a nested object", func() {
			raw := []json.RawMessage{
				json.RawMessage(`{"id": 1, "name": "A", "email": "a@example.org", "company": {"name": "Romaguera-Crona"}}`),
			}

			users, errs := validate.Users(raw)

			So(errs, ShouldBeEmpty)
			So(users[0].CompanyName, ShouldEqual, "Romaguera-Crona")
		})

		Convey("When the company comes as a flat field", func() {
			raw := []json.RawMessage{
				json.RawMessage(`{"id": 1, "name": "A", "email": "a@example.org", "company_name": "Deckow-Crist"}`),
			}

			users, errs := validate.Users(raw)

			So(errs, ShouldBeEmpty)
			So(users[0].CompanyName, ShouldEqual, "Deckow-Crist")
		})

		Convey("When optional fields are absent", func() {
			raw := []json.RawMessage{
				json.RawMessage(`{"id": 1, "name": "A", "email": "a@example.org"}`),
			}

			users, errs := validate.Users(raw)

			So(errs, ShouldBeEmpty)
			So(users[0].Username, ShouldBeEmpty)
			So(users[0].CompanyName, ShouldBeEmpty)
		})

		Convey("When the input is empty", func() {
			users, errs := validate.Users(nil)

			So(users, ShouldBeEmpty)
			So(errs, ShouldBeEmpty)
		})
	})
}

func TestPosts(t *testing.T) {
	Convey("Given a batch of raw post records", t, func() {
		Convey("When every record is well-formed", func() {
			raw := []json.RawMessage{
				rawPost(1, 1, "first", "hello world"),
				rawPost(2, 1, "second", ""),
			}

			posts, errs := validate.Posts(raw)

			Convey("Then all records parse, including the empty body", func() {
				So(errs, ShouldBeEmpty)
				So(posts, ShouldHaveLength, 2)
				So(posts[0].UserID, ShouldEqual, 1)
				So(posts[1].Body, ShouldBeEmpty)
			})
		})

		Convey("When a record is missing userId", func() {
			raw := []json.RawMessage{
				json.RawMessage(`{"id": 1, "title": "t", "body": "b"}`),
			}

			posts, errs := validate.Posts(raw)

			So(posts, ShouldBeEmpty)
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, "userId")
			So(errs[0].Reason, ShouldEqual, "missing")
		})

		Convey("When a record is missing its body entirely", func() {
			raw := []json.RawMessage{
				json.RawMessage(`{"id": 1, "userId": 1, "title": "t"}`),
			}

			_, errs := validate.Posts(raw)

			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, "body")
			So(errs[0].Reason, ShouldEqual, "missing")
		})

		Convey("When a record has an empty title", func() {
			raw := []json.RawMessage{rawPost(1, 1, "", "b")}

			_, errs := validate.Posts(raw)

			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, "title")
			So(errs[0].Reason, ShouldEqual, "must not be empty")
		})

		Convey("When good and bad records are interleaved", func() {
			raw := []json.RawMessage{
				rawPost(1, 1, "a", "x"),
				json.RawMessage(`{"id": "two", "userId": 1, "title": "b", "body": "y"}`),
				rawPost(3, 2, "c", "z"),
			}

			posts, errs := validate.Posts(raw)

			So(posts, ShouldHaveLength, 2)
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Index, ShouldEqual, 1)
			So(posts[0].ID, ShouldEqual, 1)
			So(posts[1].ID, ShouldEqual, 3)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given rejection lists of varying sizes", t, func() {
		Convey("When the list is empty", func() {
			So(validate.Error(validate.ResourceUsers, nil), ShouldBeNil)
		})

		Convey("When the list has entries", func() {
			errs := []validate.RecordError{
				{Index: 0, Field: "id", Reason: "missing"},
				{Index: 3, Field: "email", Reason: "must contain @"},
			}

			err := validate.Error(validate.ResourceUsers, errs)

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "users: 2 invalid records")

			var verr *validate.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Records, ShouldHaveLength, 2)
		})
	})
}
