package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/db"
	"github.com/ESVigan/auto-renamer/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// testConfig returns a default config for testing.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

// runApp runs the CLI app with captured stdout.
func runApp(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"renamer"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestCLICodesAdd tests the codes add command.
func TestCLICodesAdd(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	app := newCLIApp(database, testConfig())

	out, err := runApp(t, app, "codes", "add", "--code=A", "--full-name=Proj")
	if err != nil {
		t.Fatalf("codes add failed: %v", err)
	}

	var output ops.StoreCodeOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Code.ID == "" {
		t.Error("expected non-empty ID")
	}
	if output.Code.Code != "A" || output.Code.FullName != "Proj" {
		t.Errorf("stored code = %+v, want A/Proj", output.Code)
	}
}

// TestCLICodesListAndDelete tests codes list and delete.
func TestCLICodesListAndDelete(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	app := newCLIApp(database, testConfig())

	stored, err := ops.StoreCode(database, ops.StoreCodeInput{Code: "A", FullName: "Proj"})
	if err != nil {
		t.Fatalf("failed to store test code: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		out, err := runApp(t, app, "codes", "list")
		if err != nil {
			t.Fatalf("codes list failed: %v", err)
		}

		var output ops.ListCodesOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Total != 1 || output.Codes[0].ID != stored.Code.ID {
			t.Errorf("output = %+v, want one code %s", output, stored.Code.ID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		out, err := runApp(t, app, "codes", "delete", stored.Code.ID)
		if err != nil {
			t.Fatalf("codes delete failed: %v", err)
		}

		var output ops.DeleteCodeOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if !output.Deleted {
			t.Error("expected deleted=true")
		}
	})

	t.Run("delete without id returns error", func(t *testing.T) {
		_, err := runApp(t, app, "codes", "delete")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestCLIRules tests the rules add/list/suggest commands.
func TestCLIRules(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	app := newCLIApp(database, testConfig())

	t.Run("add", func(t *testing.T) {
		out, err := runApp(t, app, "rules", "add", "--diff-num=1", "--full-name=Opening", "--abbr=OP", "--lang=en")
		if err != nil {
			t.Fatalf("rules add failed: %v", err)
		}

		var output ops.StoreRuleOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Rule.DiffNum != "1" {
			t.Errorf("diff_num = %q, want 1", output.Rule.DiffNum)
		}
	})

	t.Run("add non-numeric diff-num returns error", func(t *testing.T) {
		_, err := runApp(t, app, "rules", "add", "--diff-num=xx")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := runApp(t, app, "rules", "list")
		if err != nil {
			t.Fatalf("rules list failed: %v", err)
		}

		var output ops.ListRulesOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Total != 1 {
			t.Errorf("total = %d, want 1", output.Total)
		}
	})

	t.Run("suggest", func(t *testing.T) {
		out, err := runApp(t, app, "rules", "suggest", "--field=lang")
		if err != nil {
			t.Fatalf("rules suggest failed: %v", err)
		}

		var output ops.SuggestOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(output.Values) != 1 || output.Values[0] != "en" {
			t.Errorf("values = %v, want [en]", output.Values)
		}
	})

	t.Run("suggest invalid field returns error", func(t *testing.T) {
		_, err := runApp(t, app, "rules", "suggest", "--field=bogus")
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("update", func(t *testing.T) {
		list, err := ops.ListRules(database)
		if err != nil {
			t.Fatalf("ListRules failed: %v", err)
		}
		out, err := runApp(t, app, "rules", "update", "--lang=zh", list.Rules[0].ID)
		if err != nil {
			t.Fatalf("rules update failed: %v", err)
		}

		var output ops.UpdateRuleOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Rule.Lang != "zh" {
			t.Errorf("lang = %q, want zh", output.Rule.Lang)
		}
		if output.Rule.FullName != "Opening" {
			t.Errorf("full_name = %q, want unchanged Opening", output.Rule.FullName)
		}
	})
}

// seedTables inserts one code and one complete rule for batch tests.
func seedTables(t *testing.T, database *sql.DB) {
	t.Helper()
	if _, err := ops.StoreCode(database, ops.StoreCodeInput{Code: "A", FullName: "Proj"}); err != nil {
		t.Fatalf("failed to store test code: %v", err)
	}
	if _, err := ops.StoreRule(database, ops.StoreRuleInput{
		DiffNum: "1", FullName: "Opening", Abbr: "OP", Lang: "en",
	}); err != nil {
		t.Fatalf("failed to store test rule: %v", err)
	}
}

// TestCLIPreview tests the preview command with path arguments.
func TestCLIPreview(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	seedTables(t, database)
	app := newCLIApp(database, testConfig())

	out, err := runApp(t, app, "preview", "--date=250101", "/in/A-1.mp4", "/in/B-9.mp4")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	var output ops.PreviewOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.Ready != 1 || output.Errors != 1 {
		t.Errorf("ready=%d errors=%d, want 1/1", output.Ready, output.Errors)
	}
	if output.Items[0].NewName != "250101_Proj+Opening_en_OP_1080x1920.mp4" {
		t.Errorf("new name = %q", output.Items[0].NewName)
	}
}

// TestCLIPreviewStdin tests path input piped via stdin.
func TestCLIPreviewStdin(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	seedTables(t, database)
	app := newCLIApp(database, testConfig())

	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR
	go func() {
		_, _ = stdinW.WriteString("/in/A-1.mp4\n\n/in/A-1.mov\n")
		stdinW.Close()
	}()

	out, err := runApp(t, app, "preview", "--date=250101")
	os.Stdin = oldStdin

	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	var output ops.PreviewOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(output.Items) != 2 {
		t.Errorf("items = %d, want 2 (blank lines skipped)", len(output.Items))
	}
}

// TestCLIRunAndUndo tests the run and undo commands against real files.
func TestCLIRunAndUndo(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	seedTables(t, database)
	app := newCLIApp(database, testConfig())

	dir := t.TempDir()
	src := filepath.Join(dir, "A-1.mp4")
	if err := os.WriteFile(src, []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := runApp(t, app, "run", "--date=250101", src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var executed ops.ExecuteOutput
	if err := json.Unmarshal([]byte(out), &executed); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if executed.Renamed != 1 {
		t.Fatalf("renamed = %d, want 1", executed.Renamed)
	}
	renamed := filepath.Join(dir, "250101_Proj+Opening_en_OP_1080x1920.mp4")
	if _, err := os.Stat(renamed); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}

	out, err = runApp(t, app, "undo")
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	var undone ops.UndoOutput
	if err := json.Unmarshal([]byte(out), &undone); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if undone.Restored != 1 {
		t.Errorf("restored = %d, want 1", undone.Restored)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original file not restored: %v", err)
	}
}

// TestCLIExportImport tests the export and import commands.
func TestCLIExportImport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	seedTables(t, database)
	app := newCLIApp(database, testConfig())

	exportPath := filepath.Join(t.TempDir(), "profile.json")

	t.Run("export", func(t *testing.T) {
		out, err := runApp(t, app, "export", "--path="+exportPath)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		var output ops.ExportProfileOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Codes != 1 || output.Rules != 1 {
			t.Errorf("codes=%d rules=%d, want 1/1", output.Codes, output.Rules)
		}
		if output.Path != exportPath {
			t.Errorf("path = %s, want %s", output.Path, exportPath)
		}
	})

	database2, cleanup2 := setupTestDB(t)
	defer cleanup2()
	app2 := newCLIApp(database2, testConfig())

	t.Run("import", func(t *testing.T) {
		out, err := runApp(t, app2, "import", "--path="+exportPath)
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}

		var output ops.ImportProfileOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Codes != 1 || output.Rules != 1 {
			t.Errorf("codes=%d rules=%d, want 1/1", output.Codes, output.Rules)
		}
	})

	t.Run("import conflict returns error", func(t *testing.T) {
		_, err := runApp(t, app2, "import", "--path="+exportPath)
		if err == nil {
			t.Error("expected error on non-empty tables, got nil")
		}
	})

	t.Run("import replace succeeds", func(t *testing.T) {
		out, err := runApp(t, app2, "import", "--path="+exportPath, "--mode=replace")
		if err != nil {
			t.Fatalf("import --mode=replace failed: %v", err)
		}

		var output ops.ImportProfileOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if !output.Replaced {
			t.Error("expected replaced=true")
		}
	})
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	app := newCLIApp(database, testConfig())

	t.Run("rules delete not found returns error", func(t *testing.T) {
		err := app.Run([]string{"renamer", "rules", "delete", "01INVALIDXXXXXXXXXXXXXXXXX"})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("import missing file returns error", func(t *testing.T) {
		err := app.Run([]string{"renamer", "import", "--path=" + filepath.Join(t.TempDir(), "missing.json")})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"renamer"},
			expected: false,
		},
		{
			name:     "preview command",
			args:     []string{"renamer", "preview"},
			expected: true,
		},
		{
			name:     "run command",
			args:     []string{"renamer", "run"},
			expected: true,
		},
		{
			name:     "serve command",
			args:     []string{"renamer", "serve"},
			expected: true,
		},
		{
			name:     "help flag",
			args:     []string{"renamer", "--help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"renamer", "--version"},
			expected: true,
		},
		{
			name:     "unknown arg defaults to MCP",
			args:     []string{"renamer", "--unknown"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"renamer"},
			expected: false,
		},
		{
			name:     "help flag",
			args:     []string{"renamer", "--help"},
			expected: true,
		},
		{
			name:     "help subcommand",
			args:     []string{"renamer", "help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"renamer", "--version"},
			expected: true,
		},
		{
			name:     "preview command is not help",
			args:     []string{"renamer", "preview"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
