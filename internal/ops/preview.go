package ops

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/db"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	Date  string   // optional; defaults to today in the configured format
	Paths []string // required: candidate files
}

// PreviewOutput contains the result of the Preview operation.
type PreviewOutput struct {
	Date   string           `json:"date"`
	Items  []rules.FileItem `json:"items"`
	Ready  int              `json:"ready"`
	Errors int              `json:"errors"`
}

// Preview resolves every candidate against a snapshot of the stored tables.
// It performs no filesystem changes; callers re-run it after any table edit
// to refresh the working set (resolution is pure, so re-running is cheap).
func Preview(database *sql.DB, cfg *config.Config, input PreviewInput) (*PreviewOutput, error) {
	date, err := resolveDate(cfg, input.Date)
	if err != nil {
		return nil, err
	}
	if len(input.Paths) == 0 {
		return nil, errors.NewInvalidRequest("at least one path is required")
	}
	if len(input.Paths) > MaxBatchFiles {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("too many files: %d (max %d)", len(input.Paths), MaxBatchFiles))
	}

	// One snapshot of both tables covers the whole batch.
	codes, err := db.ListCodes(database)
	if err != nil {
		return nil, err
	}
	ruleList, err := db.ListRules(database)
	if err != nil {
		return nil, err
	}

	out := &PreviewOutput{Date: date, Items: make([]rules.FileItem, 0, len(input.Paths))}
	for _, path := range input.Paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		id, err := generateULID()
		if err != nil {
			return nil, err
		}

		name := filepath.Base(path)
		res := rules.Resolve(date, codes, ruleList, name)

		item := rules.FileItem{
			ID:           id,
			OriginalPath: path,
			OriginalName: name,
			NewName:      res.NewName,
			Status:       res.Status,
			Message:      res.Message,
			Failure:      res.Failure,
		}
		if item.Status == rules.StatusReady {
			out.Ready++
		} else {
			out.Errors++
		}
		out.Items = append(out.Items, item)
	}

	if len(out.Items) == 0 {
		return nil, errors.NewInvalidRequest("at least one path is required")
	}
	return out, nil
}

// resolveDate applies the default date (today, configured layout) when none
// is supplied.
func resolveDate(cfg *config.Config, date string) (string, error) {
	date = strings.TrimSpace(date)
	if date != "" {
		return date, nil
	}
	layout := "060102"
	if cfg != nil && cfg.DateFormat != "" {
		layout = cfg.DateFormat
	}
	return time.Now().Format(layout), nil
}
