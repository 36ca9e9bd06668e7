// Package mongoid generates and validates the 24 hex character object IDs used
// as template and instance identifiers by the host catalog.
package mongoid

import (
	"encoding/hex"
	"regexp"

	"github.com/rs/xid"
)

var idRegex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// New returns a fresh object ID. xid lays out its 12 bytes the same way
// (4-byte time, 3-byte machine, 2-byte pid, 3-byte counter), so the hex
// encoding is a valid ID and never repeats within a process.
func New() string {
	return hex.EncodeToString(xid.New().Bytes())
}

// Valid reports whether s is syntactically an object ID.
func Valid(s string) bool {
	return idRegex.MatchString(s)
}

// Generator produces instance IDs. Tests swap it for a deterministic sequence.
type Generator func() string
