package rules

import "strings"

// ProjectCode maps a filename prefix to the project name substituted into
// generated output. Codes need not be unique; match order follows Position.
type ProjectCode struct {
	// ID is a ULID that uniquely identifies this record
	ID string `json:"id"`

	// Code is the literal prefix matched against the filename stem.
	// An empty code never matches.
	Code string `json:"code"`

	// FullName is substituted into the generated filename
	FullName string `json:"full_name"`

	// Position defines match order within the table (lower first)
	Position int `json:"position"`

	// CreatedAt is the Unix timestamp when the record was created
	CreatedAt int64 `json:"created_at,omitempty"`

	// UpdatedAt is the Unix timestamp when the record was last updated
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// DiffRule describes one numbered variant of a deliverable. DiffNum is
// matched by exact string equality ("02" and "2" are distinct rules);
// uniqueness is not enforced, the first rule in Position order wins.
type DiffRule struct {
	// ID is a ULID that uniquely identifies this record
	ID string `json:"id"`

	// DiffNum is the numeric key as a string
	DiffNum string `json:"diff_num"`

	// FullName is the variant's full name
	FullName string `json:"full_name"`

	// Abbr is the variant's abbreviation
	Abbr string `json:"abbr"`

	// Lang is the variant's language tag
	Lang string `json:"lang"`

	// Position defines match order within the table (lower first)
	Position int `json:"position"`

	// CreatedAt is the Unix timestamp when the record was created
	CreatedAt int64 `json:"created_at,omitempty"`

	// UpdatedAt is the Unix timestamp when the record was last updated
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// Complete reports whether the rule carries all the fields name generation
// needs. Whitespace-only values count as empty.
func (r DiffRule) Complete() bool {
	return strings.TrimSpace(r.FullName) != "" &&
		strings.TrimSpace(r.Abbr) != "" &&
		strings.TrimSpace(r.Lang) != ""
}

// Status classifies a file item after resolution.
type Status string

const (
	StatusReady   Status = "ready"
	StatusError   Status = "error"
	StatusPending Status = "pending"
)

// FileItem is one candidate file in the working set together with its
// resolution outcome. NewName holds either a generated name or a bracketed
// diagnostic placeholder.
type FileItem struct {
	ID           string      `json:"id"`
	OriginalPath string      `json:"original_path"`
	OriginalName string      `json:"original_name"`
	NewName      string      `json:"new_name"`
	Status       Status      `json:"status"`
	Message      string      `json:"message,omitempty"`
	Failure      FailureCode `json:"failure,omitempty"`
}

// RenameRecord is one applied rename, kept for undo.
type RenameRecord struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}
