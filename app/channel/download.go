package channel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// DownloadedRelease is a release staged on local disk, ready for Apply.
type DownloadedRelease struct {
	Version string
	Path    string
	SHA256  string
}

// Download stages the release described by info under StageDir/<version>.
// A previously staged copy with a matching checksum is reused.
func (h *Handle) Download(ctx context.Context, info UpdateInfo) (DownloadedRelease, error) {
	if err := h.checkOpen(); err != nil {
		return DownloadedRelease{}, err
	}
	if !info.Available() {
		return DownloadedRelease{}, fmt.Errorf("%w: no release to download", ErrDownloadFailed)
	}
	rel := info.Release
	src := h.location().resolve(rel.URL)

	filename := releaseFileName(src)
	if filename == "" {
		return DownloadedRelease{}, fmt.Errorf("%w: invalid release url %q", ErrDownloadFailed, rel.URL)
	}
	stageDir := filepath.Join(h.cfg.StageDir, rel.Version)
	stageFile := filepath.Join(stageDir, filename)
	want := strings.ToLower(rel.SHA256)

	if sum, err := fileSHA256(stageFile); err == nil {
		if want == "" || sum == want {
			slog.Info("update already downloaded", "path", stageFile)
			return DownloadedRelease{Version: rel.Version, Path: stageFile, SHA256: sum}, nil
		}
		slog.Warn("staged update does not match checksum, downloading again", "path", stageFile)
	}

	if err := cleanupOldDownloads(h.cfg.StageDir, rel.Version); err != nil {
		slog.Warn("failed to cleanup stale update downloads", "error", err)
	}

	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return DownloadedRelease{}, fmt.Errorf("%w: create stage dir %s: %w", ErrDownloadFailed, stageDir, err)
	}

	body, err := h.openRelease(ctx, src)
	if err != nil {
		return DownloadedRelease{}, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer body.Close()

	partial := stageFile + ".partial"
	fp, err := os.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return DownloadedRelease{}, fmt.Errorf("%w: create %s: %w", ErrDownloadFailed, partial, err)
	}

	hasher := sha256.New()
	_, err = io.Copy(io.MultiWriter(fp, hasher), body)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partial)
		return DownloadedRelease{}, fmt.Errorf("%w: write %s: %w", ErrDownloadFailed, partial, err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if want != "" && sum != want {
		os.Remove(partial)
		return DownloadedRelease{}, fmt.Errorf("%w: %w: expected %s, got %s", ErrDownloadFailed, ErrChecksumMismatch, want, sum)
	}

	if err := os.Rename(partial, stageFile); err != nil {
		os.Remove(partial)
		return DownloadedRelease{}, fmt.Errorf("%w: stage %s: %w", ErrDownloadFailed, stageFile, err)
	}

	slog.Info("new update downloaded", "path", stageFile, "version", rel.Version)
	return DownloadedRelease{Version: rel.Version, Path: stageFile, SHA256: sum}, nil
}

func (h *Handle) openRelease(ctx context.Context, src string) (io.ReadCloser, error) {
	u, err := url.Parse(src)
	if err != nil || !isRemote(u) {
		return os.Open(localPath(src))
	}

	req, err := newRequest(ctx, h.cfg, http.MethodGet, src)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading update: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status attempting to download update %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func releaseFileName(src string) string {
	var name string
	if u, err := url.Parse(src); err == nil && isRemote(u) {
		name = path.Base(u.Path)
	} else {
		name = filepath.Base(localPath(src))
	}
	if name == "." || name == "/" || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// cleanupOldDownloads removes every staged version except keep.
func cleanupOldDownloads(stageDir, keep string) error {
	entries, err := os.ReadDir(stageDir)
	if errors.Is(err, fs.ErrNotExist) {
		// Expected on first run
		return nil
	}
	if err != nil {
		return err
	}

	var merr *multierror.Error
	for _, entry := range entries {
		if entry.Name() == keep {
			continue
		}
		fullname := filepath.Join(stageDir, entry.Name())
		slog.Debug("cleaning up old download", "path", fullname)
		if err := os.RemoveAll(fullname); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

func fileSHA256(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
