// Package aggregate joins users to their posts and derives per-user
// metrics. Everything here is pure: no I/O, no clocks, no shared state.
package aggregate

import (
	"sort"
	"unicode/utf8"

	"github.com/caplink/userpulse/internal/domain/model"
)

// Compute derives one UserMetrics entry per user, in input order.
//
// Posts are grouped by user id. A user with no posts yields zero counts
// and a zero average. Posts referencing an unknown user are dropped
// unless WithStrictOrphans is set, in which case the first orphan aborts
// the computation.
func Compute(users []model.User, posts []model.Post, opts ...Option) ([]model.UserMetrics, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	known := make(map[int64]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}

	byUser := make(map[int64][]model.Post, len(users))

	for _, p := range posts {
		if _, ok := known[p.UserID]; !ok {
			if s.strictOrphans {
				return nil, &OrphanError{PostID: p.ID, UserID: p.UserID}
			}

			continue
		}

		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	out := make([]model.UserMetrics, 0, len(users))

	for _, u := range users {
		own := byUser[u.ID]

		var avg float64

		if len(own) > 0 {
			var total int
			for _, p := range own {
				total += utf8.RuneCountInString(p.Body)
			}

			avg = float64(total) / float64(len(own))
		}

		out = append(out, model.UserMetrics{
			UserID:     u.ID,
			Name:       u.Name,
			TotalPosts: len(own),
			AvgChars:   avg,
			Company:    u.CompanyName,
		})
	}

	return out, nil
}

// SortByPostCount orders metrics for presentation: most posts first,
// ties broken by ascending user id. The input is not modified.
func SortByPostCount(in []model.UserMetrics) []model.UserMetrics {
	out := make([]model.UserMetrics, len(in))
	copy(out, in)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPosts != out[j].TotalPosts {
			return out[i].TotalPosts > out[j].TotalPosts
		}

		return out[i].UserID < out[j].UserID
	})

	return out
}

// FilterActive keeps users with at least minPosts posts.
func FilterActive(in []model.UserMetrics, minPosts int) []model.UserMetrics {
	out := make([]model.UserMetrics, 0, len(in))

	for _, m := range in {
		if m.TotalPosts >= minPosts {
			out = append(out, m)
		}
	}

	return out
}

// MeanAvgChars returns the mean of the per-user average post lengths,
// 0.0 when in is empty.
func MeanAvgChars(in []model.UserMetrics) float64 {
	if len(in) == 0 {
		return 0
	}

	var sum float64
	for _, m := range in {
		sum += m.AvgChars
	}

	return sum / float64(len(in))
}
