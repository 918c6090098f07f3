package ops

import (
	"database/sql"
	"os"

	"github.com/ESVigan/auto-renamer/internal/db"
)

// NoticeNothingToUndo is returned when no undo generation is pending.
const NoticeNothingToUndo = "nothing to undo"

// UndoOutput contains the result of the Undo operation.
type UndoOutput struct {
	Restored   int             `json:"restored"`
	Failures   []RenameFailure `json:"failures,omitempty"`
	Generation string          `json:"generation,omitempty"`
	Notice     string          `json:"notice,omitempty"`
}

// Undo reverses the pending undo generation, newest rename first, then
// discards it. Only one generation is retained, so executing again before
// undoing forfeits the previous batch.
func Undo(database *sql.DB) (*UndoOutput, error) {
	generation, records, err := db.GetUndoGeneration(database)
	if err != nil {
		return nil, err
	}

	out := &UndoOutput{Generation: generation}
	if len(records) == 0 {
		out.Notice = NoticeNothingToUndo
		return out, nil
	}

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if err := os.Rename(rec.NewPath, rec.OldPath); err != nil {
			out.Failures = append(out.Failures, RenameFailure{
				Path:    rec.NewPath,
				Message: err.Error(),
			})
			continue
		}
		out.Restored++
	}

	// The generation is spent either way; partial failures are reported,
	// not retried.
	if err := db.ClearUndo(database); err != nil {
		return nil, err
	}

	return out, nil
}
