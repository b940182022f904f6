package reviewchain

import (
	"math"
	"sort"

	"reviewhub/internal/microservices/http-api/models"
)

// Stats are entity-level statistics derived from the current version of each
// chain. A chain with five updates still counts once.
type Stats struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// SortOrder for current-version listings.
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortHighest SortOrder = "highest"
	SortLowest  SortOrder = "lowest"
)

// ParseSortOrder maps a query-string value to a SortOrder, defaulting to
// newest-first for anything unknown.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldest, SortHighest, SortLowest:
		return SortOrder(s)
	default:
		return SortNewest
	}
}

// Aggregate computes stats over the current versions of the given chains.
// Empty input yields zero values, never NaN. The average is rounded to one
// decimal for display.
//
// This is the only place review statistics are computed; services and
// handlers must call it instead of recounting rows.
func Aggregate(chains []Chain) Stats {
	if len(chains) == 0 {
		return Stats{}
	}

	sum := 0
	for _, c := range chains {
		sum += c.Current.Rating
	}
	mean := float64(sum) / float64(len(chains))

	return Stats{
		AverageRating: math.Round(mean*10) / 10,
		ReviewCount:   len(chains),
	}
}

// ListCurrent returns each chain's current version in the requested display
// order. The default order is most recent activity first (an appended update
// bumps the chain). Ties always fall back to the chain key so pagination is
// stable across runs.
func ListCurrent(chains []Chain, order SortOrder) []models.Review {
	currents := make([]models.Review, 0, len(chains))
	keys := make(map[string]ChainKey, len(chains))
	for _, c := range chains {
		currents = append(currents, c.Current)
		keys[c.Current.ID] = c.Key
	}

	less := func(i, j int) bool {
		a, b := currents[i], currents[j]
		switch order {
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortHighest:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case SortLowest:
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		default: // SortNewest
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return keyLess(keys[a.ID], keys[b.ID])
	}
	sort.SliceStable(currents, less)
	return currents
}

func keyLess(a, b ChainKey) bool {
	if a.BusinessID != b.BusinessID {
		return a.BusinessID < b.BusinessID
	}
	return a.UserID < b.UserID
}
