package uuid

import (
	"strings"

	google_uuid "github.com/google/uuid"
)

// MustUUID returns a random UUID in its canonical string form
func MustUUID() string {
	return google_uuid.New().String()
}

// MustIdentifier returns a random UUID with the dashes removed
// so it can be embedded in identifiers such as SQL table names
func MustIdentifier() string {
	return strings.ReplaceAll(MustUUID(), "-", "")
}
