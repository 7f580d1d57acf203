// validity/selector.go
package validity

import (
	"sort"
	"time"
)

// Candidates returns the records covering [t0, t1], in input order.
func Candidates(records []Record, t0, t1 time.Time) []Record {
	var out []Record
	for _, r := range records {
		if r.Covers(t0, t1) {
			out = append(out, r)
		}
	}
	return out
}

// SelectCovering returns the ProductID of the most recently generated record
// that fully covers [t0, t1]. If none does, a *SelectionError is returned.
func SelectCovering(records []Record, t0, t1 time.Time) (string, error) {
	candidates := Candidates(records, t0, t1)
	if len(candidates) == 0 {
		return "", &SelectionError{Start: t0, End: t1}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].GenerationTime.After(candidates[j].GenerationTime)
	})

	return candidates[0].ProductID, nil
}
