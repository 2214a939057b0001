// Package storage persists the serialized campaign document.
package storage

import (
	"strconv"

	"campaign-server/internal/shared/errors"

	"github.com/cespare/xxhash/v2"
)

// ErrNotFound reports that no campaign document has been saved yet.
var ErrNotFound = errors.New(errors.ErrorTypeNotFound, "state_not_found", "campaign state not found")

// Digest identifies a document's content.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// DigestString is the hex form of Digest stored next to a document.
func DigestString(data []byte) string {
	return strconv.FormatUint(Digest(data), 16)
}
