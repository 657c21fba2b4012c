// Package ids mints the time-ordered identifiers used for domain records.
package ids

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. Ids sort by creation time.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(strings.TrimSpace(s))
	return err == nil
}
