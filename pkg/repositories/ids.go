package repositories

import (
	"strings"

	"github.com/google/uuid"
)

// newPipelineID returns a fresh opaque record id: a UUIDv4 rendered as 32
// hex characters, matching the id format already present in stored data.
func newPipelineID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
