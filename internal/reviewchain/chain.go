// Package reviewchain is the pure core of the review system: it groups flat
// review rows into per-(user, business) chains, picks each chain's current
// version, resolves the single trust badge to render, derives entity stats
// from current versions only, and decides in-place editability.
//
// Everything in this package is a pure function over an in-memory snapshot.
// Nothing here touches the database, mutates its input, or panics on bad
// data; integrity problems are reported as Anomaly values so callers can log
// them and still render something sensible.
package reviewchain

import (
	"sort"

	"reviewhub/internal/microservices/http-api/models"
)

// ChainKey identifies one chain: a user reviews a business at most once, then
// appends updates to that same chain.
type ChainKey struct {
	UserID     string
	BusinessID int64
}

// Chain is the derived, never-persisted grouping of one original review and
// its appended updates.
type Chain struct {
	Key ChainKey

	// Original is the row with no parent. When the data is broken (zero or
	// several originals) this is the deterministic display fallback, and a
	// matching Anomaly is reported.
	Original models.Review

	// Updates ordered by UpdateNumber ascending (CreatedAt breaks ties).
	Updates []models.Review

	// Current is the content-bearing version shown as "the review": the
	// highest-numbered update, or the original when there are none.
	Current models.Review

	// AllVersions holds every row of the chain ordered by CreatedAt ascending
	// for history display. CreatedAt ordering is deliberate: it must not be
	// assumed to agree with UpdateNumber ordering.
	AllVersions []models.Review
}

// Anomaly kinds reported by BuildChains. All are non-fatal: display falls back
// deterministically and the caller decides whether to log or alert.
const (
	AnomalyMissingOriginal       = "missing_original"
	AnomalyMultipleOriginals     = "multiple_originals"
	AnomalyDuplicateUpdateNumber = "duplicate_update_number"
)

// Anomaly describes a data-integrity violation found while grouping rows.
type Anomaly struct {
	Kind      string
	Key       ChainKey
	ReviewIDs []string
}

// BuildChains partitions rows by (user, business) and derives one Chain per
// partition. Input is never mutated. Chains come back in a deterministic
// order (business id, then user id) so repeated runs over the same snapshot
// agree.
func BuildChains(reviews []models.Review) ([]Chain, []Anomaly) {
	if len(reviews) == 0 {
		return nil, nil
	}

	groups := make(map[ChainKey][]models.Review)
	for _, r := range reviews {
		key := ChainKey{UserID: r.UserID, BusinessID: r.BusinessID}
		groups[key] = append(groups[key], r)
	}

	keys := make([]ChainKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].BusinessID != keys[j].BusinessID {
			return keys[i].BusinessID < keys[j].BusinessID
		}
		return keys[i].UserID < keys[j].UserID
	})

	chains := make([]Chain, 0, len(groups))
	var anomalies []Anomaly
	for _, key := range keys {
		chain, chainAnomalies := buildChain(key, groups[key])
		chains = append(chains, chain)
		anomalies = append(anomalies, chainAnomalies...)
	}
	return chains, anomalies
}

func buildChain(key ChainKey, rows []models.Review) (Chain, []Anomaly) {
	var anomalies []Anomaly

	var originals, updates []models.Review
	for _, r := range rows {
		if r.IsOriginal() {
			originals = append(originals, r)
		} else {
			updates = append(updates, r)
		}
	}

	// Exactly one original is the invariant. Zero or several is broken data;
	// pick the earliest-created row so the UI still has something to anchor
	// the chain on, and report it.
	var original models.Review
	switch len(originals) {
	case 1:
		original = originals[0]
	case 0:
		anomalies = append(anomalies, Anomaly{
			Kind:      AnomalyMissingOriginal,
			Key:       key,
			ReviewIDs: reviewIDs(rows),
		})
		original = earliest(rows)
		updates = withoutID(updates, original.ID)
	default:
		anomalies = append(anomalies, Anomaly{
			Kind:      AnomalyMultipleOriginals,
			Key:       key,
			ReviewIDs: reviewIDs(originals),
		})
		original = earliest(originals)
	}

	updates = sortUpdates(updates)
	if dups := duplicateUpdateNumbers(updates); len(dups) > 0 {
		anomalies = append(anomalies, Anomaly{
			Kind:      AnomalyDuplicateUpdateNumber,
			Key:       key,
			ReviewIDs: dups,
		})
	}

	current := original
	if len(updates) > 0 {
		current = updates[len(updates)-1]
	}

	allVersions := make([]models.Review, len(rows))
	copy(allVersions, rows)
	sort.SliceStable(allVersions, func(i, j int) bool {
		return allVersions[i].CreatedAt.Before(allVersions[j].CreatedAt)
	})

	return Chain{
		Key:         key,
		Original:    original,
		Updates:     updates,
		Current:     current,
		AllVersions: allVersions,
	}, anomalies
}

// sortUpdates orders by UpdateNumber ascending with CreatedAt as tie break,
// on a copy of the input. A nil UpdateNumber on an update row is itself
// broken data; it sorts first so it can never displace a numbered update as
// the current version.
func sortUpdates(updates []models.Review) []models.Review {
	sorted := make([]models.Review, len(updates))
	copy(sorted, updates)
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, nj := updateNumber(sorted[i]), updateNumber(sorted[j])
		if ni != nj {
			return ni < nj
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

func updateNumber(r models.Review) int {
	if r.UpdateNumber == nil {
		return 0
	}
	return *r.UpdateNumber
}

func duplicateUpdateNumbers(updates []models.Review) []string {
	seen := make(map[int]bool, len(updates))
	var dups []string
	for _, u := range updates {
		n := updateNumber(u)
		if seen[n] {
			dups = append(dups, u.ID)
		}
		seen[n] = true
	}
	return dups
}

func earliest(rows []models.Review) models.Review {
	best := rows[0]
	for _, r := range rows[1:] {
		if r.CreatedAt.Before(best.CreatedAt) {
			best = r
		}
	}
	return best
}

func withoutID(rows []models.Review, id string) []models.Review {
	out := make([]models.Review, 0, len(rows))
	for _, r := range rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func reviewIDs(rows []models.Review) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
