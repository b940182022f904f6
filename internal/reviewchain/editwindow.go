package reviewchain

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

const (
	// EditWindow is how long after creation an unedited review can still be
	// changed in place. Appending updates is unlimited; this window only
	// covers the one-time silent fix of the original text.
	EditWindow = time.Minute

	// EditNoticeWindow is how long the author sees an explanation of why the
	// edit option disappeared.
	EditNoticeWindow = 5 * time.Minute
)

// CanEdit reports whether the viewer may edit the review in place right now.
// Only the author may edit, only once ever (UpdatedAt moving off CreatedAt
// consumes the allowance), and only within EditWindow of creation. Once
// locked a review never becomes editable again.
func CanEdit(review *models.Review, viewerID string, now time.Time) bool {
	if viewerID != review.UserID {
		return false
	}
	if !review.UpdatedAt.Equal(review.CreatedAt) {
		return false
	}
	return now.Sub(review.CreatedAt) < EditWindow
}

// ShowEditExpiredNotice reports whether to display the "why can't I edit
// this" message: the author, shortly after creation, once editing is no
// longer possible.
func ShowEditExpiredNotice(review *models.Review, viewerID string, now time.Time) bool {
	if viewerID != review.UserID {
		return false
	}
	if now.Sub(review.CreatedAt) >= EditNoticeWindow {
		return false
	}
	return !CanEdit(review, viewerID, now)
}
