package ops

import (
	"strings"
	"testing"
	"time"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/rules"
)

func TestPreview_HappyPath(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	seedCode(t, database, "A", "Proj")
	seedRule(t, database, "1", "Opening", "OP", "en")

	out, err := Preview(database, cfg, PreviewInput{
		Date:  "250101",
		Paths: []string{"/media/in/A-1.mp4"},
	})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if out.Ready != 1 || out.Errors != 0 {
		t.Fatalf("Ready/Errors = %d/%d, want 1/0", out.Ready, out.Errors)
	}
	item := out.Items[0]
	if item.NewName != "250101_Proj+Opening_en_OP_1080x1920.mp4" {
		t.Errorf("NewName = %q", item.NewName)
	}
	if item.Status != rules.StatusReady {
		t.Errorf("Status = %q, want ready", item.Status)
	}
	if item.OriginalName != "A-1.mp4" {
		t.Errorf("OriginalName = %q, want %q", item.OriginalName, "A-1.mp4")
	}
}

func TestPreview_MixedBatch(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	seedCode(t, database, "A", "Proj")
	seedRule(t, database, "1", "Opening", "OP", "en")

	out, err := Preview(database, cfg, PreviewInput{
		Date:  "250101",
		Paths: []string{"/in/A-1.mp4", "/in/B-1.mp4", "/in/A-9.mp4"},
	})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if out.Ready != 1 || out.Errors != 2 {
		t.Fatalf("Ready/Errors = %d/%d, want 1/2", out.Ready, out.Errors)
	}
	if out.Items[1].Failure != rules.FailNoProjectMatch {
		t.Errorf("Items[1].Failure = %q, want no project match", out.Items[1].Failure)
	}
	if out.Items[2].Failure != rules.FailNoRuleForDiffNumber {
		t.Errorf("Items[2].Failure = %q, want no rule for diff number", out.Items[2].Failure)
	}
}

func TestPreview_DefaultDate(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	seedCode(t, database, "A", "Proj")
	seedRule(t, database, "1", "Opening", "OP", "en")

	out, err := Preview(database, cfg, PreviewInput{Paths: []string{"/in/A-1.mp4"}})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	today := time.Now().Format("060102")
	if out.Date != today {
		t.Errorf("Date = %q, want today %q", out.Date, today)
	}
	if !strings.HasPrefix(out.Items[0].NewName, today+"_") {
		t.Errorf("NewName = %q, want %q prefix", out.Items[0].NewName, today)
	}
}

func TestPreview_Validation(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()

	if _, err := Preview(database, cfg, PreviewInput{Date: "250101"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("no paths: got %v, want ErrInvalidRequest", err)
	}

	blank := PreviewInput{Date: "250101", Paths: []string{"  ", ""}}
	if _, err := Preview(database, cfg, blank); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("all-blank paths: got %v, want ErrInvalidRequest", err)
	}

	over := PreviewInput{Date: "250101", Paths: make([]string, MaxBatchFiles+1)}
	for i := range over.Paths {
		over.Paths[i] = "/in/A-1.mp4"
	}
	if _, err := Preview(database, cfg, over); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("over batch cap: got %v, want ErrInvalidRequest", err)
	}
}

func TestPreview_NoFilesystemAccess(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	seedCode(t, database, "A", "Proj")
	seedRule(t, database, "1", "Opening", "OP", "en")

	// Paths need not exist; preview only resolves names.
	out, err := Preview(database, cfg, PreviewInput{
		Date:  "250101",
		Paths: []string{"/does/not/exist/A-1.mp4"},
	})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if out.Ready != 1 {
		t.Errorf("Ready = %d, want 1", out.Ready)
	}
}
