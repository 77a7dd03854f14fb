package estimate

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when an estimator is called with arguments
// that make the computation undefined. It is reported before any sampling.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgument wraps ErrInvalidArgument with a description of the offending argument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
