// Package update checks GitHub releases for a newer build and can replace the
// running binary with a downloaded asset.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/errors"
)

const defaultBaseURL = "https://api.github.com"

// maxResponseBytes caps the release metadata response.
const maxResponseBytes = 1 << 20

// Release is the subset of the GitHub release payload the checker uses.
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Body    string  `json:"body"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Client talks to the GitHub releases API for one configured repository.
type Client struct {
	httpClient *http.Client
	baseURL    string
	repo       string
	asset      string
	token      string
}

// NewClient builds a release client from config. The token, if any, is read
// from the environment variable named by update_token_env so it never lives
// in the config file itself.
func NewClient(cfg *config.Config) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		repo:       cfg.UpdateRepo,
		asset:      cfg.UpdateAsset,
	}
	if cfg.UpdateTokenEnv != "" {
		c.token = os.Getenv(cfg.UpdateTokenEnv)
	}
	return c
}

// Latest fetches the latest release for the configured repository.
func (c *Client) Latest(ctx context.Context) (*Release, error) {
	if c.repo == "" {
		return nil, errors.NewInvalidRequest("update_repo is not configured")
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("release request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("repository %q has no releases", c.repo))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("release request returned %s", resp.Status))
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&release); err != nil {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("invalid release payload: %v", err))
	}
	if release.TagName == "" {
		return nil, errors.NewUpdateCheck("release has no tag name")
	}
	return &release, nil
}

// CheckResult describes the outcome of a version check.
type CheckResult struct {
	CurrentVersion  string  `json:"current_version"`
	LatestVersion   string  `json:"latest_version"`
	UpdateAvailable bool    `json:"update_available"`
	Release         Release `json:"release"`
}

// Check fetches the latest release and compares it against currentVersion.
// A malformed remote tag is reported as an update error; a malformed current
// version treats any release as newer (dev builds always see updates).
func Check(ctx context.Context, client *Client, currentVersion string) (*CheckResult, error) {
	release, err := client.Latest(ctx)
	if err != nil {
		return nil, err
	}

	if _, _, ok := parseVersion(release.TagName); !ok {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("unparseable release tag %q", release.TagName))
	}

	return &CheckResult{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.TagName,
		UpdateAvailable: IsNewer(currentVersion, release.TagName),
		Release:         *release,
	}, nil
}

// IsNewer reports whether latest is a strictly newer version than current.
// Versions look like v<major>.<minor> with an optional leading v. An
// unparseable current version counts as older than any valid latest.
func IsNewer(current, latest string) bool {
	lmaj, lmin, ok := parseVersion(latest)
	if !ok {
		return false
	}
	cmaj, cmin, ok := parseVersion(current)
	if !ok {
		return true
	}
	if lmaj != cmaj {
		return lmaj > cmaj
	}
	return lmin > cmin
}

// parseVersion parses "v<major>.<minor>" (the leading v optional, extra
// dotted parts ignored).
func parseVersion(s string) (major, minor int, ok bool) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "v"))
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return 0, 0, false
	}
	return major, minor, true
}

// FindAsset returns the release asset whose name matches the configured
// asset name, or nil if the release carries none.
func (c *Client) FindAsset(release *Release) *Asset {
	for i := range release.Assets {
		if release.Assets[i].Name == c.asset {
			return &release.Assets[i]
		}
	}
	return nil
}
