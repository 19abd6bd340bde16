// Package model contains the domain entities passed between pipeline
// stages: validated users and posts on the way in, per-user metrics on
// the way out.
package model

// User is a validated account record fetched from the API.
type User struct {
	ID          int64
	Name        string
	Username    string
	Email       string
	CompanyName string // optional; empty when the API omits it
}

// Post is a validated content record belonging to one user.
type Post struct {
	ID     int64
	UserID int64
	Title  string
	Body   string
}

// UserMetrics holds the per-user aggregates handed to report rendering.
type UserMetrics struct {
	UserID     int64
	Name       string
	TotalPosts int
	AvgChars   float64
	Company    string
}
