package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ESVigan/auto-renamer/internal/errors"
)

// Suggestion memory bank fields fed by rule edits.
const (
	SuggestFieldFullName = "full_name"
	SuggestFieldAbbr     = "abbr"
	SuggestFieldLang     = "lang"
)

// MaxBatchFiles caps one preview/execute request.
const MaxBatchFiles = 500

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id.String(), nil
}
