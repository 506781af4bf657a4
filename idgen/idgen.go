// Package idgen generates request identifiers.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// Compact returns a Generator of length-character lowercase hex IDs taken
// from a random UUID. length is clamped to 1..32.
func Compact(length int) Generator {
	length = max(1, min(length, 32))
	return func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
	}
}

// TraceID is the generator used for per-request trace IDs.
var TraceID Generator = Compact(12)
