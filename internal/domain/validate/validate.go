// Package validate parses raw API records into domain entities.
//
// Validation is partial: malformed records are excluded and reported,
// well-formed records are always returned. Callers decide whether a
// non-empty rejection list is fatal.
package validate

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/caplink/userpulse/internal/domain/model"
)

// Resource names used in rejection reports.
const (
	ResourceUsers = "users"
	ResourcePosts = "posts"
)

// RecordError describes one rejected record.
type RecordError struct {
	Index  int    // position in the raw input
	Field  string // offending field; empty when the record itself is malformed
	Reason string
}

// Users parses raw user records. Records that are not JSON objects, or
// that fail a field rule, are dropped and reported in input order.
func Users(raw []json.RawMessage) ([]model.User, []RecordError) {
	users := make([]model.User, 0, len(raw))

	var errs []RecordError

	for i, rec := range raw {
		obj, rerr := asObject(rec)
		if rerr != nil {
			errs = append(errs, RecordError{Index: i, Field: rerr.field, Reason: rerr.reason})
			continue
		}

		u, rerr := parseUser(obj)
		if rerr != nil {
			errs = append(errs, RecordError{Index: i, Field: rerr.field, Reason: rerr.reason})
			continue
		}

		users = append(users, u)
	}

	return users, errs
}

// Posts parses raw post records under the same partial-success policy
// as Users.
func Posts(raw []json.RawMessage) ([]model.Post, []RecordError) {
	posts := make([]model.Post, 0, len(raw))

	var errs []RecordError

	for i, rec := range raw {
		obj, rerr := asObject(rec)
		if rerr != nil {
			errs = append(errs, RecordError{Index: i, Field: rerr.field, Reason: rerr.reason})
			continue
		}

		p, rerr := parsePost(obj)
		if rerr != nil {
			errs = append(errs, RecordError{Index: i, Field: rerr.field, Reason: rerr.reason})
			continue
		}

		posts = append(posts, p)
	}

	return posts, errs
}

// fieldError pinpoints a single bad field inside a record.
type fieldError struct {
	field  string
	reason string
}

func asObject(rec json.RawMessage) (map[string]any, *fieldError) {
	var obj map[string]any
	if err := json.Unmarshal(rec, &obj); err != nil {
		return nil, &fieldError{reason: "not a JSON object"}
	}

	return obj, nil
}

func parseUser(obj map[string]any) (model.User, *fieldError) {
	id, rerr := requireID(obj, "id")
	if rerr != nil {
		return model.User{}, rerr
	}

	name, rerr := requireString(obj, "name")
	if rerr != nil {
		return model.User{}, rerr
	}

	email, rerr := requireString(obj, "email")
	if rerr != nil {
		return model.User{}, rerr
	}

	if !strings.Contains(email, "@") {
		return model.User{}, &fieldError{field: "email", reason: "must contain @"}
	}

	username, rerr := optionalString(obj, "username")
	if rerr != nil {
		return model.User{}, rerr
	}

	company, rerr := companyName(obj)
	if rerr != nil {
		return model.User{}, rerr
	}

	return model.User{
		ID:          id,
		Name:        name,
		Username:    username,
		Email:       email,
		CompanyName: company,
	}, nil
}

func parsePost(obj map[string]any) (model.Post, *fieldError) {
	id, rerr := requireID(obj, "id")
	if rerr != nil {
		return model.Post{}, rerr
	}

	userID, rerr := requireID(obj, "userId")
	if rerr != nil {
		return model.Post{}, rerr
	}

	title, rerr := requireString(obj, "title")
	if rerr != nil {
		return model.Post{}, rerr
	}

	// body must be present and a string, but may be empty
	v, ok := obj["body"]
	if !ok {
		return model.Post{}, &fieldError{field: "body", reason: "missing"}
	}

	body, ok := v.(string)
	if !ok {
		return model.Post{}, &fieldError{field: "body", reason: "must be a string"}
	}

	return model.Post{
		ID:     id,
		UserID: userID,
		Title:  title,
		Body:   body,
	}, nil
}

// requireID extracts a positive integer identifier. JSON numbers decode
// as float64, so integrality is checked explicitly.
func requireID(obj map[string]any, key string) (int64, *fieldError) {
	v, ok := obj[key]
	if !ok {
		return 0, &fieldError{field: key, reason: "missing"}
	}

	f, ok := v.(float64)
	if !ok || math.Trunc(f) != f {
		return 0, &fieldError{field: key, reason: "must be an integer"}
	}

	if f <= 0 {
		return 0, &fieldError{field: key, reason: "must be positive"}
	}

	return int64(f), nil
}

func requireString(obj map[string]any, key string) (string, *fieldError) {
	v, ok := obj[key]
	if !ok {
		return "", &fieldError{field: key, reason: "missing"}
	}

	s, ok := v.(string)
	if !ok {
		return "", &fieldError{field: key, reason: "must be a string"}
	}

	if s == "" {
		return "", &fieldError{field: key, reason: "must not be empty"}
	}

	return s, nil
}

func optionalString(obj map[string]any, key string) (string, *fieldError) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", &fieldError{field: key, reason: "must be a string"}
	}

	return s, nil
}

// companyName accepts both the flat company_name form and the nested
// company.name object used by JSONPlaceholder-style APIs.
func companyName(obj map[string]any) (string, *fieldError) {
	if v, ok := obj["company_name"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return "", &fieldError{field: "company_name", reason: "must be a string"}
		}

		return s, nil
	}

	v, ok := obj["company"]
	if !ok || v == nil {
		return "", nil
	}

	nested, ok := v.(map[string]any)
	if !ok {
		return "", &fieldError{field: "company", reason: "must be an object"}
	}

	n, ok := nested["name"]
	if !ok || n == nil {
		return "", nil
	}

	s, ok := n.(string)
	if !ok {
		return "", &fieldError{field: "company.name", reason: "must be a string"}
	}

	return s, nil
}
