// Package content implements content-addressed binary storage.
// Uploaded bytes are keyed by their SHA-256 digest so identical uploads
// resolve to a single stored blob.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Object describes a stored blob. StorageKey is derived from SHA256 alone.
type Object struct {
	SHA256       string    `json:"sha256"`
	StorageKey   string    `json:"storage_key"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type"`
	Deduplicated bool      `json:"deduplicated"`
	CreatedAt    time.Time `json:"created_at"`
}

// Hash returns the hex-encoded SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StorageKey returns the blob key for a content hash.
// Two levels of fan-out keep any single prefix small.
func StorageKey(hash string) string {
	return fmt.Sprintf("objects/%s/%s/%s", hash[0:2], hash[2:4], hash)
}

// DetectContentType prefers an explicit header value and falls back to
// sniffing the leading bytes.
func DetectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func validHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
