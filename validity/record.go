// validity/record.go
package validity

import (
	"errors"
	"fmt"
	"time"
)

// DateFormat is the compact YYYYMMDDTHHMMSS layout used in orbit file identifiers.
const DateFormat = "20060102T150405"

// ErrInvertedInterval is returned by Interval.Validate when Start is after End.
var ErrInvertedInterval = errors.New("interval start is after its end")

// Record is the validity information carried by a single orbit file identifier.
type Record struct {
	ProductID      string
	GenerationTime time.Time
	ValidityStart  time.Time // inclusive
	ValidityEnd    time.Time // inclusive
}

// Covers reports whether the record's validity fully contains [t0, t1].
// Both bounds are closed.
func (r Record) Covers(t0, t1 time.Time) bool {
	return !r.ValidityStart.After(t0) && !r.ValidityEnd.Before(t1)
}

func (r Record) String() string {
	return fmt.Sprintf("%s [GEN: %s VALID: %s -> %s]", r.ProductID,
		r.GenerationTime.Format(DateFormat),
		r.ValidityStart.Format(DateFormat), r.ValidityEnd.Format(DateFormat))
}

// Interval is a time window that an orbit file must cover.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Widen returns the interval extended by before and after.
func (i Interval) Widen(before, after time.Duration) Interval {
	return Interval{Start: i.Start.Add(-before), End: i.End.Add(after)}
}

// Overlaps reports whether i and o share at least one instant.
func (i Interval) Overlaps(o Interval) bool {
	return !i.Start.After(o.End) && !o.Start.After(i.End)
}

// Validate rejects inverted intervals.
func (i Interval) Validate() error {
	if i.Start.After(i.End) {
		return fmt.Errorf("%w: [%s, %s]", ErrInvertedInterval,
			i.Start.Format(DateFormat), i.End.Format(DateFormat))
	}
	return nil
}
