package links

import "errors"

var (
	ErrInvalidKind   = errors.New("invalid link entity kind")
	ErrInvalidTarget = errors.New("invalid link target")
	ErrInvalidType   = errors.New("invalid link type")
)
