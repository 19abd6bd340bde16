package aggregate

import "fmt"

// OrphanError reports a post whose author is not in the fetched user
// set. Returned only when strict orphan handling is enabled.
type OrphanError struct {
	PostID int64
	UserID int64
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("post %d references unknown user %d", e.PostID, e.UserID)
}
