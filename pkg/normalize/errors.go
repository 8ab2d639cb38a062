package normalize

import (
	"errors"
	"fmt"
)

// ErrNoData indicates the upstream returned an empty result set for the
// requested resource. Surfaced to clients as a not-found condition.
var ErrNoData = errors.New("no data for requested resource")

// ShapeError indicates a raw document lacked the minimum fields
// required for its resource kind. Surfaced as a server error and logged
// with the offending kind.
type ShapeError struct {
	Kind   string
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("unrecognized %s document shape: %s", e.Kind, e.Reason)
}
