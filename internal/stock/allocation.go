package stock

import (
	"sort"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
)

// methodRank groups candidates by their lot's allocation tag: FIFO lots are
// consumed first (oldest stock leaves the building), LIFO lots next (newest
// of those first), everything else falls through to the expiry tie-break.
func methodRank(method string) int {
	switch method {
	case model.AllocationFIFO:
		return 0
	case model.AllocationLIFO:
		return 1
	default:
		return 2
	}
}

// Compare orders two candidate records for allocation. The chain is:
//
//  1. method group (fifo, then lifo, then fefo/untagged)
//  2. the group's own key: created_at ascending for fifo,
//     created_at descending for lifo
//  3. expiry date ascending, nil expiry last (applies to every group,
//     so mixed-tag candidate sets still order deterministically)
//  4. record id, so the order is total
//
// Returns a negative value when a should be consumed before b.
func Compare(a, b *model.StockRecord) int {
	if ra, rb := methodRank(a.AllocationMethod), methodRank(b.AllocationMethod); ra != rb {
		return ra - rb
	}

	switch methodRank(a.AllocationMethod) {
	case 0: // fifo: oldest first
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.Before(b.CreatedAt) {
				return -1
			}
			return 1
		}
	case 1: // lifo: newest first
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.After(b.CreatedAt) {
				return -1
			}
			return 1
		}
	}

	if c := compareExpiry(a.ExpiryDate, b.ExpiryDate); c != 0 {
		return c
	}

	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// compareExpiry sorts earlier expiry first; records without an expiry sort
// after every record that has one.
func compareExpiry(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

// RankCandidates returns the records a caller should consume from, in
// consumption order. Records that are inactive or have nothing available
// are dropped. The input slice is not modified.
func RankCandidates(records []model.StockRecord) []model.StockRecord {
	candidates := make([]model.StockRecord, 0, len(records))
	for _, r := range records {
		if r.IsActive && r.AvailableQuantity > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return Compare(&candidates[i], &candidates[j]) < 0
	})
	return candidates
}

// SuggestPickLocation returns the single best record that can cover the full
// requirement on its own, for picking-list suggestions. The second return is
// false when no single record covers it; the picking list shows those lines
// as warnings instead of failing.
func SuggestPickLocation(records []model.StockRecord, required float64) (*model.StockRecord, bool) {
	ranked := RankCandidates(records)
	for i := range ranked {
		if ranked[i].AvailableQuantity >= required {
			return &ranked[i], true
		}
	}
	return nil, false
}
