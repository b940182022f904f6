package reviewchain

import "reviewhub/internal/microservices/http-api/models"

// BadgeKind enumerates the four possible trust badges. Exactly one is
// rendered per review.
type BadgeKind string

const (
	BadgeCustomVerified      BadgeKind = "custom_verified"
	BadgePendingVerification BadgeKind = "pending_verification"
	BadgeVerified            BadgeKind = "verified"
	BadgeUnverified          BadgeKind = "unverified"
)

// Badge is the single trust indicator for a review. Label and Icon are the
// fixed presentation pairing for the kind; UI maps Icon to its own asset set.
type Badge struct {
	Kind  BadgeKind `json:"kind"`
	Tag   string    `json:"tag,omitempty"` // only for custom_verified
	Label string    `json:"label"`
	Icon  string    `json:"icon"`
}

// ResolveBadge collapses the overlapping verification signals on a review and
// its author's profile into one badge. First matching rule wins:
//
//  1. proof submitted, moderator-approved, tag present -> custom badge with
//     that tag ("Verified Employee" etc.)
//  2. proof submitted but not (yet) approved -> pending. This must come
//     before the profile fallback: a submitted-but-unverified proof showing
//     up as "Verified" would overstate trust.
//  3. profile-level identity verification -> verified
//  4. otherwise -> unverified
//
// Total function: every combination of inputs yields a badge, a nil author
// counts as an unverified profile.
func ResolveBadge(review *models.Review, author *models.User) Badge {
	if review.IsProofSubmitted {
		if review.ProofVerified != nil && *review.ProofVerified &&
			review.CustomVerificationTag != nil && *review.CustomVerificationTag != "" {
			return Badge{
				Kind:  BadgeCustomVerified,
				Tag:   *review.CustomVerificationTag,
				Label: *review.CustomVerificationTag,
				Icon:  "shield-check",
			}
		}
		if review.ProofVerified == nil || !*review.ProofVerified {
			return Badge{
				Kind:  BadgePendingVerification,
				Label: "Verification Pending",
				Icon:  "clock",
			}
		}
		// Approved proof without a tag carries no extra claim; fall through to
		// the profile signal.
	}

	if author != nil && author.MainBadge == models.MainBadgeVerified {
		return Badge{
			Kind:  BadgeVerified,
			Label: models.MainBadgeVerified,
			Icon:  "check-circle",
		}
	}

	return Badge{
		Kind:  BadgeUnverified,
		Label: models.MainBadgeUnverified,
		Icon:  "user",
	}
}
