package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ESVigan/auto-renamer/internal/errors"
)

// maxAssetBytes caps a downloaded binary at 256 MiB.
const maxAssetBytes = 256 << 20

// ApplyResult describes a completed binary replacement.
type ApplyResult struct {
	Path       string `json:"path"`
	BackupPath string `json:"backup_path"`
	Version    string `json:"version"`
	Bytes      int64  `json:"bytes"`
}

// Apply downloads the configured asset from the release and swaps it in for
// the binary at targetPath. The previous binary is kept next to it with a
// .bak suffix so a broken update can be reverted by hand.
//
// The download goes to a temp file in the target's directory; the final step
// is a rename, so a failed download never touches the running binary.
func (c *Client) Apply(ctx context.Context, release *Release, targetPath string) (*ApplyResult, error) {
	if targetPath == "" {
		return nil, errors.NewInvalidRequest("target path is required")
	}
	asset := c.FindAsset(release)
	if asset == nil {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("release %s has no asset named %q", release.TagName, c.asset))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("asset download failed: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("asset download returned %s", resp.Status))
	}

	dir := filepath.Dir(targetPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(targetPath)+".download-*")
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create download file: %w", err))
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, errors.NewUpdateCheck(fmt.Sprintf("asset download failed: %v", err))
	}
	if written > maxAssetBytes {
		return nil, errors.NewUpdateCheck("asset exceeds the download size limit")
	}
	if err := tmp.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		return nil, errors.NewInternal(err)
	}

	backupPath := targetPath + ".bak"
	if _, err := os.Stat(targetPath); err == nil {
		os.Remove(backupPath)
		if err := os.Rename(targetPath, backupPath); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to back up current binary: %w", err))
		}
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		// Put the old binary back so the install stays usable.
		if _, statErr := os.Stat(backupPath); statErr == nil {
			os.Rename(backupPath, targetPath)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to install new binary: %w", err))
	}

	success = true
	return &ApplyResult{
		Path:       targetPath,
		BackupPath: backupPath,
		Version:    release.TagName,
		Bytes:      written,
	}, nil
}
