package ops

import (
	"database/sql"
	"testing"

	"github.com/ESVigan/auto-renamer/internal/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func seedCode(t *testing.T, database *sql.DB, code, fullName string) string {
	t.Helper()
	out, err := StoreCode(database, StoreCodeInput{Code: code, FullName: fullName})
	if err != nil {
		t.Fatalf("StoreCode(%q) failed: %v", code, err)
	}
	return out.Code.ID
}

func seedRule(t *testing.T, database *sql.DB, diffNum, fullName, abbr, lang string) string {
	t.Helper()
	out, err := StoreRule(database, StoreRuleInput{DiffNum: diffNum, FullName: fullName, Abbr: abbr, Lang: lang})
	if err != nil {
		t.Fatalf("StoreRule(%q) failed: %v", diffNum, err)
	}
	return out.Rule.ID
}

func stringPtr(s string) *string {
	return &s
}
