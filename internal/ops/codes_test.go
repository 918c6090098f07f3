package ops

import (
	"testing"

	"github.com/ESVigan/auto-renamer/internal/errors"
)

func TestStoreCode_HappyPath(t *testing.T) {
	database := newTestDB(t)

	out, err := StoreCode(database, StoreCodeInput{Code: "A", FullName: "ProjectAlpha"})
	if err != nil {
		t.Fatalf("StoreCode failed: %v", err)
	}
	if out.Code.ID == "" {
		t.Error("ID should not be empty")
	}
	if len(out.Code.ID) != 26 {
		t.Errorf("ID length = %d, want 26 (ULID)", len(out.Code.ID))
	}
	if out.Code.Code != "A" {
		t.Errorf("Code = %q, want %q", out.Code.Code, "A")
	}
	if out.Code.Position != 1 {
		t.Errorf("Position = %d, want 1", out.Code.Position)
	}
}

func TestStoreCode_TrimsInput(t *testing.T) {
	database := newTestDB(t)

	out, err := StoreCode(database, StoreCodeInput{Code: "  A  ", FullName: "  ProjectAlpha  "})
	if err != nil {
		t.Fatalf("StoreCode failed: %v", err)
	}
	if out.Code.Code != "A" || out.Code.FullName != "ProjectAlpha" {
		t.Errorf("got %q/%q, want trimmed values", out.Code.Code, out.Code.FullName)
	}
}

func TestStoreCode_Validation(t *testing.T) {
	database := newTestDB(t)

	if _, err := StoreCode(database, StoreCodeInput{Code: "", FullName: "X"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty code: got %v, want ErrInvalidRequest", err)
	}
	if _, err := StoreCode(database, StoreCodeInput{Code: "A", FullName: "   "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank full_name: got %v, want ErrInvalidRequest", err)
	}
}

func TestStoreCode_DuplicatesAllowed(t *testing.T) {
	database := newTestDB(t)

	seedCode(t, database, "A", "First")
	seedCode(t, database, "A", "Second")

	out, err := ListCodes(database)
	if err != nil {
		t.Fatalf("ListCodes failed: %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("Total = %d, want 2", out.Total)
	}
	if out.Codes[0].FullName != "First" {
		t.Errorf("first entry = %q, want %q (insertion order)", out.Codes[0].FullName, "First")
	}
}

func TestListCodes_MatchOrder(t *testing.T) {
	database := newTestDB(t)

	seedCode(t, database, "AB", "Second")
	seedCode(t, database, "A", "First")

	out, err := ListCodes(database)
	if err != nil {
		t.Fatalf("ListCodes failed: %v", err)
	}
	if out.Codes[0].Code != "AB" || out.Codes[1].Code != "A" {
		t.Errorf("order = %q, %q; want insertion order AB, A", out.Codes[0].Code, out.Codes[1].Code)
	}
}

func TestUpdateCode(t *testing.T) {
	database := newTestDB(t)
	id := seedCode(t, database, "A", "Old")

	out, err := UpdateCode(database, UpdateCodeInput{ID: id, FullName: stringPtr("New")})
	if err != nil {
		t.Fatalf("UpdateCode failed: %v", err)
	}
	if out.Code.FullName != "New" {
		t.Errorf("FullName = %q, want %q", out.Code.FullName, "New")
	}
	if out.Code.Code != "A" {
		t.Errorf("Code changed to %q, want unchanged %q", out.Code.Code, "A")
	}
}

func TestUpdateCode_EmptyValueRejected(t *testing.T) {
	database := newTestDB(t)
	id := seedCode(t, database, "A", "Proj")

	if _, err := UpdateCode(database, UpdateCodeInput{ID: id, Code: stringPtr("  ")}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("got %v, want ErrInvalidRequest", err)
	}
}

func TestUpdateCode_NotFound(t *testing.T) {
	database := newTestDB(t)

	if _, err := UpdateCode(database, UpdateCodeInput{ID: "01INVALIDXXXXXXXXXXXXXXXXX"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteCode(t *testing.T) {
	database := newTestDB(t)
	id := seedCode(t, database, "A", "Proj")

	out, err := DeleteCode(database, DeleteCodeInput{ID: id})
	if err != nil {
		t.Fatalf("DeleteCode failed: %v", err)
	}
	if !out.Deleted {
		t.Error("Deleted = false, want true")
	}

	list, err := ListCodes(database)
	if err != nil {
		t.Fatalf("ListCodes failed: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("Total = %d, want 0", list.Total)
	}
}

func TestDeleteCode_NotFound(t *testing.T) {
	database := newTestDB(t)

	if _, err := DeleteCode(database, DeleteCodeInput{ID: "01INVALIDXXXXXXXXXXXXXXXXX"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
