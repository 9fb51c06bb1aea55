package content

import "errors"

var (
	// ErrStorage indicates the blob store or content index could not be written.
	ErrStorage = errors.New("content storage failed")
	// ErrEmpty indicates an upload with no bytes.
	ErrEmpty = errors.New("content is empty")
	// ErrNotFound indicates no stored object matches the hash.
	ErrNotFound = errors.New("content not found")
	// ErrInvalidHash indicates a malformed content hash.
	ErrInvalidHash = errors.New("invalid content hash")
)
