package lifting

import (
	"errors"
	"fmt"
)

// ErrDomain matches every *DomainError through errors.Is.
var ErrDomain = errors.New("domain error")

// DomainError reports inputs for which the lifting equation has no real,
// finite answer. These abort the run: letting NaN or +Inf through would
// silently corrupt every downstream index.
type DomainError struct {
	Reason string
	// Frame is the 1-based frame that triggered the error, 0 when the error
	// is not tied to a frame.
	Frame int
}

func (e *DomainError) Error() string {
	if e.Frame > 0 {
		return fmt.Sprintf("domain error: %s at frame %d", e.Reason, e.Frame)
	}
	return "domain error: " + e.Reason
}

// Is reports whether target is ErrDomain.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// LookupError records a frame whose LI was requested but not computed. The
// interpreter collects these instead of stopping.
type LookupError struct {
	Frame int
}

func (e LookupError) Error() string {
	return fmt.Sprintf("LI value not found for frame %d", e.Frame)
}
