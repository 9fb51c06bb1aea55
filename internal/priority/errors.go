package priority

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates an input value outside its domain.
var ErrInvalidInput = errors.New("invalid priority input")

func invalid(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, detail)
}
