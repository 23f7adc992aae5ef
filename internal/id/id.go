package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortLen is the number of characters shown for an ID in CLI output.
const ShortLen = 8

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Short truncates an ID for display.
// "0b5c4a3e-..." -> "0b5c4a3e"
func Short(id string) string {
	if len(id) <= ShortLen {
		return id
	}
	return id[:ShortLen]
}

// Resolve finds the single ID in ids that equals or starts with prefix.
func Resolve(ids []string, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty id")
	}

	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("ambiguous id %q", prefix)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("no id matching %q", prefix)
	}
	return match, nil
}
