package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/ESVigan/auto-renamer/internal/db"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

// StoreCodeInput contains parameters for the StoreCode operation.
type StoreCodeInput struct {
	Code     string // required: prefix matched against filenames
	FullName string // required: substituted into generated names
}

// StoreCodeOutput contains the result of the StoreCode operation.
type StoreCodeOutput struct {
	Code rules.ProjectCode `json:"code"`
}

// StoreCode appends a project code to the match table. Codes are matched in
// insertion order; duplicates are allowed (the earlier entry wins).
func StoreCode(database *sql.DB, input StoreCodeInput) (*StoreCodeOutput, error) {
	input.Code = strings.TrimSpace(input.Code)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Code == "" {
		return nil, errors.NewInvalidRequest("code is required")
	}
	if input.FullName == "" {
		return nil, errors.NewInvalidRequest("full_name is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, err
	}
	pos, err := db.NextCodePosition(database)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	c := rules.ProjectCode{
		ID:        id,
		Code:      input.Code,
		FullName:  input.FullName,
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertCode(database, &c); err != nil {
		return nil, err
	}

	return &StoreCodeOutput{Code: c}, nil
}

// ListCodesOutput contains the result of the ListCodes operation.
type ListCodesOutput struct {
	Codes []rules.ProjectCode `json:"codes"`
	Total int                 `json:"total"`
}

// ListCodes returns the project code table in match order.
func ListCodes(database *sql.DB) (*ListCodesOutput, error) {
	codes, err := db.ListCodes(database)
	if err != nil {
		return nil, err
	}
	return &ListCodesOutput{Codes: codes, Total: len(codes)}, nil
}

// UpdateCodeInput contains parameters for the UpdateCode operation.
// Nil fields are left unchanged.
type UpdateCodeInput struct {
	ID       string // required
	Code     *string
	FullName *string
	Position *int
}

// UpdateCodeOutput contains the result of the UpdateCode operation.
type UpdateCodeOutput struct {
	Code rules.ProjectCode `json:"code"`
}

// UpdateCode edits an existing project code in place.
func UpdateCode(database *sql.DB, input UpdateCodeInput) (*UpdateCodeOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	c, err := db.GetCodeByID(database, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		trimmed := strings.TrimSpace(*input.Code)
		if trimmed == "" {
			return nil, errors.NewInvalidRequest("code must not be empty")
		}
		c.Code = trimmed
	}
	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		if trimmed == "" {
			return nil, errors.NewInvalidRequest("full_name must not be empty")
		}
		c.FullName = trimmed
	}
	if input.Position != nil {
		c.Position = *input.Position
	}

	if err := db.UpdateCode(database, c); err != nil {
		return nil, err
	}
	return &UpdateCodeOutput{Code: *c}, nil
}

// DeleteCodeInput contains parameters for the DeleteCode operation.
type DeleteCodeInput struct {
	ID string // required
}

// DeleteCodeOutput contains the result of the DeleteCode operation.
type DeleteCodeOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteCode removes a project code from the match table.
func DeleteCode(database *sql.DB, input DeleteCodeInput) (*DeleteCodeOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.DeleteCode(database, input.ID); err != nil {
		return nil, err
	}
	return &DeleteCodeOutput{ID: input.ID, Deleted: true}, nil
}
