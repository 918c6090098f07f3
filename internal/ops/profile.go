package ops

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/db"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

// profileSchemaVersion is written into every exported profile and checked on
// import.
const profileSchemaVersion = "1.0"

// Profile is the on-disk JSON document holding one full table set.
type Profile struct {
	RenamerProfile bool                `json:"_renamer_profile"`
	SchemaVersion  string              `json:"schema_version"`
	ExportedAt     int64               `json:"exported_at"`
	Codes          []rules.ProjectCode `json:"project_codes"`
	Rules          []rules.DiffRule    `json:"diff_rules"`
}

// ExportProfileInput contains parameters for the ExportProfile operation.
type ExportProfileInput struct {
	Path string // optional, default: ~/.renamer/profiles/profile-<timestamp>.json
	Name string // optional, used in the default filename
}

// ExportProfileOutput contains the result of the ExportProfile operation.
type ExportProfileOutput struct {
	Path       string `json:"path"`
	Codes      int    `json:"codes"`
	Rules      int    `json:"rules"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportProfile writes the current project code and diff rule tables to a
// profile file. The write goes to a temp file first and is renamed into
// place, so a failure never corrupts an existing profile.
func ExportProfile(database *sql.DB, cfg *config.Config, input ExportProfileInput) (*ExportProfileOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultProfilePath(input.Name, now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths, including the default one, since the profile name
	// flows into the filename.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create profiles directory: %w", err))
	}

	codes, err := db.ListCodes(database)
	if err != nil {
		return nil, err
	}
	ruleList, err := db.ListRules(database)
	if err != nil {
		return nil, err
	}

	profile := Profile{
		RenamerProfile: true,
		SchemaVersion:  profileSchemaVersion,
		ExportedAt:     exportedAt,
		Codes:          codes,
		Rules:          ruleList,
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create profile file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return nil, errors.NewInternal(err)
	}
	if _, err := file.Write([]byte("\n")); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close profile file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("profile path is a symlink"))
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("profile destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize profile: %w", err))
	}

	success = true
	return &ExportProfileOutput{
		Path:       exportPath,
		Codes:      len(codes),
		Rules:      len(ruleList),
		ExportedAt: exportedAt,
	}, nil
}

// ImportMode controls collision behavior during profile import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail if any table is non-empty
	ImportModeReplace ImportMode = "replace" // clear both tables, then load
)

// ImportProfileInput contains parameters for the ImportProfile operation.
type ImportProfileInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportProfileOutput contains the result of the ImportProfile operation.
type ImportProfileOutput struct {
	Codes    int  `json:"codes"`
	Rules    int  `json:"rules"`
	Replaced bool `json:"replaced"`
}

// ImportProfile loads a profile file into the tables. Rows are assigned fresh
// ULIDs and consecutive positions so a hand-edited profile cannot corrupt the
// match order. Rule fields feed the suggestion bank.
func ImportProfile(database *sql.DB, cfg *config.Config, input ImportProfileInput) (*ImportProfileOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var profile Profile
	if err := json.NewDecoder(file).Decode(&profile); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid profile file: %v", err))
	}
	if !profile.RenamerProfile {
		return nil, errors.NewInvalidRequest("file is not a renamer profile")
	}
	if profile.SchemaVersion != profileSchemaVersion {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported profile schema version %q", profile.SchemaVersion))
	}

	if input.Mode == ImportModeError {
		codes, err := db.ListCodes(database)
		if err != nil {
			return nil, err
		}
		ruleList, err := db.ListRules(database)
		if err != nil {
			return nil, err
		}
		if len(codes) > 0 || len(ruleList) > 0 {
			return nil, errors.NewConflict("tables are not empty; use mode=replace to overwrite")
		}
	}

	tx, err := database.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if input.Mode == ImportModeReplace {
		if _, err := tx.Exec(`DELETE FROM project_codes`); err != nil {
			return nil, errors.NewInternal(err)
		}
		if _, err := tx.Exec(`DELETE FROM diff_rules`); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	now := time.Now().Unix()
	for i, c := range profile.Codes {
		id, err := generateULID()
		if err != nil {
			return nil, err
		}
		if err := insertCodeTx(tx, id, c, i+1, now); err != nil {
			return nil, err
		}
	}
	for i, r := range profile.Rules {
		id, err := generateULID()
		if err != nil {
			return nil, err
		}
		if err := insertRuleTx(tx, id, r, i+1, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	for _, r := range profile.Rules {
		rememberRuleFields(database, r)
	}

	return &ImportProfileOutput{
		Codes:    len(profile.Codes),
		Rules:    len(profile.Rules),
		Replaced: input.Mode == ImportModeReplace,
	}, nil
}

// defaultProfilePath generates the default profile path.
// Format: ~/.renamer/profiles/<name>-<timestamp>.json
func defaultProfilePath(name string, now time.Time) (string, error) {
	dir, err := DefaultProfilesDir()
	if err != nil {
		return "", err
	}
	timestamp := now.Format("2006-01-02T150405")
	base := "profile"
	if name != "" {
		base = SanitizeForFilename(name)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", base, timestamp)), nil
}

// insertCodeTx inserts a project code within a transaction.
func insertCodeTx(tx *sql.Tx, id string, c rules.ProjectCode, position int, now int64) error {
	query := `
		INSERT INTO project_codes (id, code, full_name, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, id, c.Code, c.FullName, position, now, now); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// insertRuleTx inserts a diff rule within a transaction.
func insertRuleTx(tx *sql.Tx, id string, r rules.DiffRule, position int, now int64) error {
	query := `
		INSERT INTO diff_rules (id, diff_num, full_name, abbr, lang, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, id, r.DiffNum, r.FullName, r.Abbr, r.Lang, position, now, now); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
