package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

// --- Project codes ---

// InsertCode stores a new project code. Position must already be assigned
// (see NextCodePosition).
func InsertCode(db *sql.DB, c *rules.ProjectCode) error {
	query := `
		INSERT INTO project_codes (id, code, full_name, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, c.ID, c.Code, c.FullName, c.Position, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListCodes returns all project codes in match order.
func ListCodes(db *sql.DB) ([]rules.ProjectCode, error) {
	query := `
		SELECT id, code, full_name, position, created_at, updated_at
		FROM project_codes
		ORDER BY position, id
	`
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var codes []rules.ProjectCode
	for rows.Next() {
		var c rules.ProjectCode
		if err := rows.Scan(&c.ID, &c.Code, &c.FullName, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return codes, nil
}

// GetCodeByID retrieves a project code by its ULID.
func GetCodeByID(db *sql.DB, id string) (*rules.ProjectCode, error) {
	query := `
		SELECT id, code, full_name, position, created_at, updated_at
		FROM project_codes
		WHERE id = ?
	`
	var c rules.ProjectCode
	err := db.QueryRow(query, id).Scan(&c.ID, &c.Code, &c.FullName, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &c, nil
}

// UpdateCode updates mutable fields of an existing project code.
// Sets updated_at to current timestamp. Does NOT change: id, created_at.
func UpdateCode(db *sql.DB, c *rules.ProjectCode) error {
	now := time.Now().Unix()

	query := `
		UPDATE project_codes
		SET code = ?, full_name = ?, position = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.Exec(query, c.Code, c.FullName, c.Position, now, c.ID)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(c.ID)
	}

	c.UpdatedAt = now
	return nil
}

// DeleteCode removes a project code.
func DeleteCode(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM project_codes WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// NextCodePosition returns the position for a newly appended project code.
func NextCodePosition(db *sql.DB) (int, error) {
	return nextPosition(db, "project_codes")
}

// --- Diff rules ---

// InsertRule stores a new diff rule. Position must already be assigned
// (see NextRulePosition). diff_num is deliberately not unique; resolution
// takes the first rule in position order.
func InsertRule(db *sql.DB, r *rules.DiffRule) error {
	query := `
		INSERT INTO diff_rules (id, diff_num, full_name, abbr, lang, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, r.ID, r.DiffNum, r.FullName, r.Abbr, r.Lang, r.Position, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListRules returns all diff rules in match order.
func ListRules(db *sql.DB) ([]rules.DiffRule, error) {
	query := `
		SELECT id, diff_num, full_name, abbr, lang, position, created_at, updated_at
		FROM diff_rules
		ORDER BY position, id
	`
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []rules.DiffRule
	for rows.Next() {
		var r rules.DiffRule
		if err := rows.Scan(&r.ID, &r.DiffNum, &r.FullName, &r.Abbr, &r.Lang, &r.Position, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// GetRuleByID retrieves a diff rule by its ULID.
func GetRuleByID(db *sql.DB, id string) (*rules.DiffRule, error) {
	query := `
		SELECT id, diff_num, full_name, abbr, lang, position, created_at, updated_at
		FROM diff_rules
		WHERE id = ?
	`
	var r rules.DiffRule
	err := db.QueryRow(query, id).Scan(&r.ID, &r.DiffNum, &r.FullName, &r.Abbr, &r.Lang, &r.Position, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &r, nil
}

// UpdateRule updates mutable fields of an existing diff rule.
// Sets updated_at to current timestamp. Does NOT change: id, created_at.
func UpdateRule(db *sql.DB, r *rules.DiffRule) error {
	now := time.Now().Unix()

	query := `
		UPDATE diff_rules
		SET diff_num = ?, full_name = ?, abbr = ?, lang = ?, position = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.Exec(query, r.DiffNum, r.FullName, r.Abbr, r.Lang, r.Position, now, r.ID)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(r.ID)
	}

	r.UpdatedAt = now
	return nil
}

// DeleteRule removes a diff rule.
func DeleteRule(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM diff_rules WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// NextRulePosition returns the position for a newly appended diff rule.
func NextRulePosition(db *sql.DB) (int, error) {
	return nextPosition(db, "diff_rules")
}

// --- Undo generation ---

// ClearUndo discards all recorded renames, regardless of generation.
func ClearUndo(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM undo_renames`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// AppendUndoRecord records one confirmed rename under the given generation.
// Records are appended as each rename is applied, so an execution that fails
// partway still leaves accurate undo entries for the files that succeeded.
func AppendUndoRecord(db *sql.DB, generation string, seq int, rec rules.RenameRecord) error {
	query := `
		INSERT INTO undo_renames (generation, seq, old_path, new_path, applied_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, generation, seq, rec.OldPath, rec.NewPath, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetUndoGeneration returns the pending undo generation and its records in
// application order. An empty generation means there is nothing to undo.
func GetUndoGeneration(db *sql.DB) (string, []rules.RenameRecord, error) {
	query := `
		SELECT generation, old_path, new_path
		FROM undo_renames
		ORDER BY seq
	`
	rows, err := db.Query(query)
	if err != nil {
		return "", nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var generation string
	var records []rules.RenameRecord
	for rows.Next() {
		var rec rules.RenameRecord
		if err := rows.Scan(&generation, &rec.OldPath, &rec.NewPath); err != nil {
			return "", nil, errors.NewInternal(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return "", nil, errors.NewInternal(err)
	}
	return generation, records, nil
}

// --- Suggestion memory bank ---

// AddSuggestion records a distinct value for the given field. Blank values
// are ignored; duplicates are a no-op.
func AddSuggestion(db *sql.DB, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	query := `INSERT OR IGNORE INTO suggestions (field, value) VALUES (?, ?)`
	if _, err := db.Exec(query, field, value); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListSuggestions returns the recorded values for a field, sorted.
func ListSuggestions(db *sql.DB, field string) ([]string, error) {
	query := `SELECT value FROM suggestions WHERE field = ? ORDER BY value`
	rows, err := db.Query(query, field)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.NewInternal(err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return values, nil
}

// nextPosition computes MAX(position)+1 for an append.
func nextPosition(db *sql.DB, table string) (int, error) {
	// table is always a compile-time constant from this package
	var next int
	if err := db.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM ` + table).Scan(&next); err != nil {
		return 0, errors.NewInternal(err)
	}
	return next, nil
}
