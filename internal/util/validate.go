package util

import (
	"fmt"
	"regexp"
)

// validLocationChars matches only alphanumeric characters, hyphens, and underscores.
var validLocationChars = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// ValidateLocationID checks that a GHL location identifier is plausible
// before it is used as a storage key or request header:
//   - At least 2 characters
//   - Only alphanumeric characters (a-z, A-Z, 0-9), hyphens (-), and underscores (_)
//
// GHL issues opaque alphanumeric IDs; the check exists to reject pasted
// URLs, blanks, and path-traversal-looking input, not to mirror GHL's
// own format.
func ValidateLocationID(id string) error {
	if len(id) < 2 {
		return fmt.Errorf("location ID must be at least 2 characters, got %d", len(id))
	}

	if !validLocationChars.MatchString(id) {
		return fmt.Errorf("location ID %q contains invalid characters (only a-z, A-Z, 0-9, hyphens, and underscores are allowed)", id)
	}

	return nil
}
