// validity/errors.go
package validity

import (
	"errors"
	"fmt"
	"time"
)

// ParseError reports an identifier that could not be turned into a Record.
type ParseError struct {
	ProductID string
	Reason    string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%q does not match the validity pattern: %s: %v", e.ProductID, e.Reason, e.Err)
	}
	return fmt.Sprintf("%q does not match the validity pattern: %s", e.ProductID, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SelectionError is returned when no record covers the requested interval.
// Callers usually retry later, since the orbit file may not be published yet.
type SelectionError struct {
	Start time.Time
	End   time.Time
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("none of the input products completely covers the requested time interval: [t0=%s, t1=%s]",
		e.Start.Format(DateFormat), e.End.Format(DateFormat))
}

// IsSelectionError reports whether err, or anything it wraps, is a *SelectionError.
func IsSelectionError(err error) bool {
	var selErr *SelectionError
	return errors.As(err, &selErr)
}
