package ops

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/db"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

// NoticeNothingToExecute is returned when no file in the batch resolved to
// ready. It is a notice, not an error: the batch itself is valid.
const NoticeNothingToExecute = "nothing to execute"

// ExecuteInput contains parameters for the Execute operation.
type ExecuteInput struct {
	Date  string   // optional; defaults as in Preview
	Paths []string // required: candidate files
}

// RenameFailure describes one file whose rename could not be applied.
type RenameFailure struct {
	Path    string `json:"path"`
	NewName string `json:"new_name,omitempty"`
	Message string `json:"message"`
}

// ExecuteOutput contains the result of the Execute operation.
type ExecuteOutput struct {
	Renamed    int                  `json:"renamed"`
	Skipped    int                  `json:"skipped"`
	Failures   []RenameFailure      `json:"failures,omitempty"`
	Records    []rules.RenameRecord `json:"records,omitempty"`
	Generation string               `json:"generation,omitempty"`
	Notice     string               `json:"notice,omitempty"`
}

// Execute re-resolves the batch and renames every ready file within its
// parent directory. Files that resolved to an error are skipped and never
// block the rest of the batch.
//
// Undo bookkeeping: the previous undo generation is discarded once at least
// one file is eligible, and a record is written only after its rename is
// confirmed. A failure partway through therefore leaves exact undo entries
// for the files that did change on disk.
func Execute(database *sql.DB, cfg *config.Config, input ExecuteInput) (*ExecuteOutput, error) {
	preview, err := Preview(database, cfg, PreviewInput{Date: input.Date, Paths: input.Paths})
	if err != nil {
		return nil, err
	}

	out := &ExecuteOutput{}
	if preview.Ready == 0 {
		out.Skipped = len(preview.Items)
		out.Notice = NoticeNothingToExecute
		return out, nil
	}

	generation, err := generateULID()
	if err != nil {
		return nil, err
	}
	// A new execution replaces the previous undo generation.
	if err := db.ClearUndo(database); err != nil {
		return nil, err
	}
	out.Generation = generation

	seq := 0
	for _, item := range preview.Items {
		if item.Status != rules.StatusReady {
			out.Skipped++
			continue
		}

		target := filepath.Join(filepath.Dir(item.OriginalPath), item.NewName)
		if target == item.OriginalPath {
			out.Skipped++
			continue
		}
		// Refuse to clobber an existing file; os.Rename would silently
		// replace it on most platforms.
		if _, err := os.Lstat(target); err == nil {
			out.Failures = append(out.Failures, RenameFailure{
				Path:    item.OriginalPath,
				NewName: item.NewName,
				Message: "target already exists",
			})
			continue
		}

		if err := os.Rename(item.OriginalPath, target); err != nil {
			out.Failures = append(out.Failures, RenameFailure{
				Path:    item.OriginalPath,
				NewName: item.NewName,
				Message: err.Error(),
			})
			continue
		}

		rec := rules.RenameRecord{OldPath: item.OriginalPath, NewPath: target}
		if err := db.AppendUndoRecord(database, generation, seq, rec); err != nil {
			// The rename is already applied; report the record so the
			// caller can still reverse it by hand.
			out.Failures = append(out.Failures, RenameFailure{
				Path:    item.OriginalPath,
				NewName: item.NewName,
				Message: "renamed but undo record not saved: " + err.Error(),
			})
			out.Renamed++
			out.Records = append(out.Records, rec)
			seq++
			continue
		}

		out.Records = append(out.Records, rec)
		out.Renamed++
		seq++
	}

	return out, nil
}
