package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	client := NewClient(cfg)
	client.baseURL = server.URL
	client.httpClient = server.Client()
	return client
}

func releaseHandler(t *testing.T, body string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/ESVigan/auto-renamer/releases/latest" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func TestCheck_UpdateAvailable(t *testing.T) {
	client := newTestClient(t, releaseHandler(t, `{
		"tag_name": "v2.3",
		"name": "v2.3",
		"body": "## Changes\n- faster matching",
		"html_url": "https://example.com/release",
		"assets": [{"name": "renamer", "size": 42, "browser_download_url": "https://example.com/renamer"}]
	}`))

	out, err := Check(context.Background(), client, "v2.2")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !out.UpdateAvailable {
		t.Error("UpdateAvailable = false, want true")
	}
	if out.LatestVersion != "v2.3" {
		t.Errorf("LatestVersion = %q, want v2.3", out.LatestVersion)
	}
	if len(out.Release.Assets) != 1 || out.Release.Assets[0].Name != "renamer" {
		t.Errorf("Assets = %+v", out.Release.Assets)
	}
}

func TestCheck_AlreadyCurrent(t *testing.T) {
	client := newTestClient(t, releaseHandler(t, `{"tag_name": "v2.3"}`))

	out, err := Check(context.Background(), client, "v2.3")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if out.UpdateAvailable {
		t.Error("UpdateAvailable = true, want false")
	}
}

func TestCheck_BadTag(t *testing.T) {
	client := newTestClient(t, releaseHandler(t, `{"tag_name": "nightly"}`))

	if _, err := Check(context.Background(), client, "v1.0"); !errors.Is(err, errors.ErrUpdateCheck) {
		t.Errorf("got %v, want ErrUpdateCheck", err)
	}
}

func TestCheck_NoReleases(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	if _, err := Check(context.Background(), client, "v1.0"); !errors.Is(err, errors.ErrUpdateCheck) {
		t.Errorf("got %v, want ErrUpdateCheck", err)
	}
}

func TestCheck_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := Check(context.Background(), client, "v1.0"); !errors.Is(err, errors.ErrUpdateCheck) {
		t.Errorf("got %v, want ErrUpdateCheck", err)
	}
}

func TestLatest_SendsToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"tag_name": "v1.0"}`))
	}))
	client.token = "secret"

	if _, err := client.Latest(context.Background()); err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
}

func TestLatest_RepoNotConfigured(t *testing.T) {
	client := &Client{httpClient: http.DefaultClient, baseURL: defaultBaseURL}

	if _, err := client.Latest(context.Background()); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("got %v, want ErrInvalidRequest", err)
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current string
		latest  string
		want    bool
	}{
		{"v1.0", "v1.1", true},
		{"v1.1", "v1.0", false},
		{"v1.1", "v1.1", false},
		{"v1.9", "v2.0", true},
		{"v2.0", "v1.9", false},
		{"1.0", "v1.1", true}, // leading v optional
		{"v1.0", "v1.1.5", true},
		{"dev", "v1.0", true},      // unparseable current sees all updates
		{"v1.0", "nightly", false}, // unparseable latest never wins
		{"v1.10", "v1.9", false},   // numeric, not lexicographic
	}
	for _, tt := range tests {
		if got := IsNewer(tt.current, tt.latest); got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

func TestFindAsset(t *testing.T) {
	cfg := config.DefaultConfig()
	client := NewClient(cfg)

	release := &Release{
		TagName: "v1.0",
		Assets: []Asset{
			{Name: "renamer.exe"},
			{Name: "renamer"},
		},
	}
	asset := client.FindAsset(release)
	if asset == nil || asset.Name != "renamer" {
		t.Errorf("FindAsset = %+v, want the renamer asset", asset)
	}

	if got := client.FindAsset(&Release{TagName: "v1.0"}); got != nil {
		t.Errorf("FindAsset on empty release = %+v, want nil", got)
	}
}
