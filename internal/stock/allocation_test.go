package stock

import (
	"math/rand"
	"testing"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/model"
)

func record(id, method string, created time.Time, expiry *time.Time, available float64) model.StockRecord {
	return model.StockRecord{
		ID:                id,
		TenantID:          "t1",
		ProductID:         "p1",
		WarehouseID:       "w1",
		AllocationMethod:  method,
		CreatedAt:         created,
		ExpiryDate:        expiry,
		Quantity:          available,
		AvailableQuantity: available,
		IsActive:          true,
	}
}

func ts(day int) time.Time {
	return time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
}

func tsp(day int) *time.Time {
	t := ts(day)
	return &t
}

func ids(records []model.StockRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestRankCandidatesFIFO(t *testing.T) {
	records := []model.StockRecord{
		record("b", model.AllocationFIFO, ts(2), nil, 5),
		record("c", model.AllocationFIFO, ts(3), nil, 5),
		record("a", model.AllocationFIFO, ts(1), nil, 5),
	}

	got := ids(RankCandidates(records))
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fifo order = %v, want %v", got, want)
		}
	}
}

func TestRankCandidatesLIFO(t *testing.T) {
	records := []model.StockRecord{
		record("a", model.AllocationLIFO, ts(1), nil, 5),
		record("c", model.AllocationLIFO, ts(3), nil, 5),
		record("b", model.AllocationLIFO, ts(2), nil, 5),
	}

	got := ids(RankCandidates(records))
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lifo order = %v, want %v", got, want)
		}
	}
}

func TestRankCandidatesMixedMethods(t *testing.T) {
	// FIFO lots first (oldest first), then LIFO lots (newest first), then
	// FEFO lots by expiry with nil expiry last.
	records := []model.StockRecord{
		record("fefo-late", model.AllocationFEFO, ts(1), tsp(20), 5),
		record("lifo-old", model.AllocationLIFO, ts(2), nil, 5),
		record("fifo-new", model.AllocationFIFO, ts(9), nil, 5),
		record("fefo-none", model.AllocationFEFO, ts(1), nil, 5),
		record("fifo-old", model.AllocationFIFO, ts(3), nil, 5),
		record("lifo-new", model.AllocationLIFO, ts(8), nil, 5),
		record("fefo-soon", model.AllocationFEFO, ts(1), tsp(10), 5),
	}

	got := ids(RankCandidates(records))
	want := []string{"fifo-old", "fifo-new", "lifo-new", "lifo-old", "fefo-soon", "fefo-late", "fefo-none"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mixed order = %v, want %v", got, want)
		}
	}
}

func TestRankCandidatesExpiryBreaksFIFOTie(t *testing.T) {
	created := ts(5)
	records := []model.StockRecord{
		record("later", model.AllocationFIFO, created, tsp(20), 5),
		record("none", model.AllocationFIFO, created, nil, 5),
		record("sooner", model.AllocationFIFO, created, tsp(10), 5),
	}

	got := ids(RankCandidates(records))
	want := []string{"sooner", "later", "none"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order = %v, want %v", got, want)
		}
	}
}

func TestRankCandidatesFiltersUnusable(t *testing.T) {
	inactive := record("inactive", model.AllocationFIFO, ts(1), nil, 5)
	inactive.IsActive = false
	empty := record("empty", model.AllocationFIFO, ts(2), nil, 0)
	ok := record("ok", model.AllocationFIFO, ts(3), nil, 5)

	got := RankCandidates([]model.StockRecord{inactive, empty, ok})
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("got %v, want only 'ok'", ids(got))
	}
}

// Compare must define a total order for any mix of tags: sorting any
// permutation of the same candidates must yield the same sequence.
func TestCompareTotalOrder(t *testing.T) {
	methods := []string{model.AllocationFIFO, model.AllocationLIFO, model.AllocationFEFO}
	rng := rand.New(rand.NewSource(42))

	var records []model.StockRecord
	for i := 0; i < 30; i++ {
		var expiry *time.Time
		if rng.Intn(2) == 0 {
			expiry = tsp(1 + rng.Intn(5))
		}
		records = append(records, record(
			string(rune('a'+i%26))+string(rune('0'+i/26)),
			methods[rng.Intn(len(methods))],
			ts(1+rng.Intn(4)),
			expiry,
			float64(1+rng.Intn(10)),
		))
	}

	for i := range records {
		for j := range records {
			ab := Compare(&records[i], &records[j])
			ba := Compare(&records[j], &records[i])
			if i == j && ab != 0 {
				t.Fatalf("Compare(x, x) = %d, want 0", ab)
			}
			if (ab < 0) != (ba > 0) || (ab == 0) != (ba == 0) {
				t.Fatalf("Compare not antisymmetric for %s/%s: %d vs %d",
					records[i].ID, records[j].ID, ab, ba)
			}
		}
	}

	base := ids(RankCandidates(records))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]model.StockRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := ids(RankCandidates(shuffled))
		for i := range base {
			if got[i] != base[i] {
				t.Fatalf("ordering not stable across permutations: %v vs %v", got, base)
			}
		}
	}
}

func TestSuggestPickLocation(t *testing.T) {
	records := []model.StockRecord{
		record("small", model.AllocationFIFO, ts(1), nil, 3),
		record("big", model.AllocationFIFO, ts(2), nil, 10),
	}

	rec, ok := SuggestPickLocation(records, 8)
	if !ok || rec.ID != "big" {
		t.Fatalf("suggestion = %v ok=%v, want 'big'", rec, ok)
	}

	// Oldest record wins when both cover the requirement.
	rec, ok = SuggestPickLocation(records, 2)
	if !ok || rec.ID != "small" {
		t.Fatalf("suggestion = %v ok=%v, want 'small'", rec, ok)
	}

	if _, ok := SuggestPickLocation(records, 20); ok {
		t.Fatal("expected no single-location suggestion for 20 units")
	}

	if _, ok := SuggestPickLocation(nil, 1); ok {
		t.Fatal("expected no suggestion with no candidates")
	}
}

func TestInsufficientStockErrorShortfall(t *testing.T) {
	err := &InsufficientStockError{Requested: 12, Available: 10}
	if got := err.Shortfall(); got != 2 {
		t.Fatalf("Shortfall() = %v, want 2", got)
	}
	if err.Error() == "" {
		t.Fatal("expected a message")
	}
}
