package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/ESVigan/auto-renamer/internal/db"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

// StoreRuleInput contains parameters for the StoreRule operation.
type StoreRuleInput struct {
	DiffNum  string // required: numeric key, compared as a string
	FullName string
	Abbr     string
	Lang     string
}

// StoreRuleOutput contains the result of the StoreRule operation.
type StoreRuleOutput struct {
	Rule rules.DiffRule `json:"rule"`
}

// StoreRule appends a diff rule to the table. An incomplete rule may be
// stored (and completed later); resolution reports it as incomplete until
// then. DiffNum uniqueness is not enforced: the first rule in table order
// serves the token.
func StoreRule(database *sql.DB, input StoreRuleInput) (*StoreRuleOutput, error) {
	input.DiffNum = strings.TrimSpace(input.DiffNum)
	if input.DiffNum == "" {
		return nil, errors.NewInvalidRequest("diff_num is required")
	}
	if !isDigits(input.DiffNum) {
		return nil, errors.NewInvalidRequest("diff_num must be numeric")
	}

	id, err := generateULID()
	if err != nil {
		return nil, err
	}
	pos, err := db.NextRulePosition(database)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	r := rules.DiffRule{
		ID:        id,
		DiffNum:   input.DiffNum,
		FullName:  strings.TrimSpace(input.FullName),
		Abbr:      strings.TrimSpace(input.Abbr),
		Lang:      strings.TrimSpace(input.Lang),
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertRule(database, &r); err != nil {
		return nil, err
	}

	rememberRuleFields(database, r)

	return &StoreRuleOutput{Rule: r}, nil
}

// ListRulesOutput contains the result of the ListRules operation.
type ListRulesOutput struct {
	Rules []rules.DiffRule `json:"rules"`
	Total int              `json:"total"`
}

// ListRules returns the diff rule table in match order.
func ListRules(database *sql.DB) (*ListRulesOutput, error) {
	list, err := db.ListRules(database)
	if err != nil {
		return nil, err
	}
	return &ListRulesOutput{Rules: list, Total: len(list)}, nil
}

// UpdateRuleInput contains parameters for the UpdateRule operation.
// Nil fields are left unchanged.
type UpdateRuleInput struct {
	ID       string // required
	DiffNum  *string
	FullName *string
	Abbr     *string
	Lang     *string
	Position *int
}

// UpdateRuleOutput contains the result of the UpdateRule operation.
type UpdateRuleOutput struct {
	Rule rules.DiffRule `json:"rule"`
}

// UpdateRule edits an existing diff rule in place.
func UpdateRule(database *sql.DB, input UpdateRuleInput) (*UpdateRuleOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetRuleByID(database, input.ID)
	if err != nil {
		return nil, err
	}

	if input.DiffNum != nil {
		trimmed := strings.TrimSpace(*input.DiffNum)
		if trimmed == "" {
			return nil, errors.NewInvalidRequest("diff_num must not be empty")
		}
		if !isDigits(trimmed) {
			return nil, errors.NewInvalidRequest("diff_num must be numeric")
		}
		r.DiffNum = trimmed
	}
	if input.FullName != nil {
		r.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Abbr != nil {
		r.Abbr = strings.TrimSpace(*input.Abbr)
	}
	if input.Lang != nil {
		r.Lang = strings.TrimSpace(*input.Lang)
	}
	if input.Position != nil {
		r.Position = *input.Position
	}

	if err := db.UpdateRule(database, r); err != nil {
		return nil, err
	}

	rememberRuleFields(database, *r)

	return &UpdateRuleOutput{Rule: *r}, nil
}

// DeleteRuleInput contains parameters for the DeleteRule operation.
type DeleteRuleInput struct {
	ID string // required
}

// DeleteRuleOutput contains the result of the DeleteRule operation.
type DeleteRuleOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteRule removes a diff rule from the table.
func DeleteRule(database *sql.DB, input DeleteRuleInput) (*DeleteRuleOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.DeleteRule(database, input.ID); err != nil {
		return nil, err
	}
	return &DeleteRuleOutput{ID: input.ID, Deleted: true}, nil
}

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	Field string // one of: full_name, abbr, lang
}

// SuggestOutput contains the result of the Suggest operation.
type SuggestOutput struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// Suggest returns previously used values for a rule field, sorted.
// The memory bank is fed by StoreRule/UpdateRule and profile imports.
func Suggest(database *sql.DB, input SuggestInput) (*SuggestOutput, error) {
	switch input.Field {
	case SuggestFieldFullName, SuggestFieldAbbr, SuggestFieldLang:
	default:
		return nil, errors.NewInvalidRequest("field must be one of: full_name, abbr, lang")
	}

	values, err := db.ListSuggestions(database, input.Field)
	if err != nil {
		return nil, err
	}
	return &SuggestOutput{Field: input.Field, Values: values}, nil
}

// rememberRuleFields feeds non-empty rule fields into the memory bank.
// Best-effort: a suggestion failure never fails the rule edit.
func rememberRuleFields(database *sql.DB, r rules.DiffRule) {
	_ = db.AddSuggestion(database, SuggestFieldFullName, r.FullName)
	_ = db.AddSuggestion(database, SuggestFieldAbbr, r.Abbr)
	_ = db.AddSuggestion(database, SuggestFieldLang, r.Lang)
}

// isDigits reports whether s is one or more decimal digits.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
