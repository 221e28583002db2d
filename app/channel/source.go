package channel

import (
	"context"
	"encoding/json"
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
	"runtime"
	"strings"
)

const manifestSizeLimit = 4 << 20

var (
	// ManifestNames are tried in order when Source names a directory or feed root.
	ManifestNames = []string{"releases.yaml", "releases.yml", "releases.json"}

	// GitHubAPIBase is the REST endpoint used for github.com sources.
	GitHubAPIBase = "https://api.github.com"

	knownOS   = []string{"windows", "darwin", "linux"}
	knownArch = []string{"amd64", "arm64", "386"}
)

// location records where a manifest was found so relative release URLs can
// be resolved against it. Exactly one of remote or dir is set.
type location struct {
	remote *url.URL
	dir    string
}

func (l location) String() string {
	if l.remote != nil {
		return l.remote.String()
	}
	return l.dir
}

// resolve turns a release URL from the manifest into something fetchable.
func (l location) resolve(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return ref
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	if l.remote != nil {
		rel, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return l.remote.ResolveReference(rel).String()
	}
	return filepath.Join(l.dir, filepath.FromSlash(ref))
}

func isRemote(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}

func isGitHub(u *url.URL) bool {
	return isRemote(u) && strings.EqualFold(u.Host, "github.com")
}

// localPath converts a file:// URL or plain path into a filesystem path.
func localPath(src string) string {
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		if u.Host != "" && u.Host != "localhost" {
			return filepath.FromSlash("//" + u.Host + u.Path)
		}
		return filepath.FromSlash(u.Path)
	}
	return src
}

func resolveManifest(ctx context.Context, cfg Config) (*Manifest, location, error) {
	u, err := url.Parse(cfg.Source)
	if err == nil && isGitHub(u) {
		return resolveGitHub(ctx, cfg, u)
	}
	if err == nil && isRemote(u) {
		return resolveRemote(ctx, cfg, u)
	}
	return resolveLocal(localPath(cfg.Source))
}

func resolveLocal(src string) (*Manifest, location, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, location{}, fmt.Errorf("%w: %s does not exist", ErrUnreachable, src)
		}
		return nil, location{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	candidates := []string{src}
	dir := filepath.Dir(src)
	if info.IsDir() {
		dir = src
		candidates = candidates[:0]
		for _, name := range ManifestNames {
			candidates = append(candidates, filepath.Join(src, name))
		}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, location{}, fmt.Errorf("%w: read %s: %w", ErrUnreachable, candidate, err)
		}
		m, err := ParseManifest(data)
		if err != nil {
			return nil, location{}, fmt.Errorf("%w: %s: %w", ErrNotFound, candidate, err)
		}
		slog.Debug("loaded local release manifest", "path", candidate, "releases", len(m.Releases))
		return m, location{dir: dir}, nil
	}
	return nil, location{}, fmt.Errorf("%w: no manifest in %s", ErrNotFound, src)
}

func resolveRemote(ctx context.Context, cfg Config, base *url.URL) (*Manifest, location, error) {
	var candidates []*url.URL
	switch strings.ToLower(path.Ext(base.Path)) {
	case ".json", ".yaml", ".yml":
		candidates = append(candidates, base)
	default:
		root := *base
		if !strings.HasSuffix(root.Path, "/") {
			root.Path += "/"
		}
		for _, name := range ManifestNames {
			candidates = append(candidates, root.ResolveReference(&url.URL{Path: name}))
		}
	}

	for _, candidate := range candidates {
		data, status, err := fetchManifest(ctx, cfg, candidate)
		if err != nil {
			return nil, location{}, err
		}
		if status == http.StatusNotFound || status == http.StatusGone {
			slog.Debug("no manifest at candidate", "url", candidate.String(), "status", status)
			continue
		}
		m, err := ParseManifest(data)
		if err != nil {
			return nil, location{}, fmt.Errorf("%w: %s: %w", ErrNotFound, candidate.Redacted(), err)
		}
		slog.Debug("loaded remote release manifest", "url", candidate.Redacted(), "releases", len(m.Releases))
		return m, location{remote: candidate}, nil
	}
	return nil, location{}, fmt.Errorf("%w: no manifest under %s", ErrNotFound, base.Redacted())
}

// fetchManifest performs the feed request. A 404/410 is reported through the
// status with a nil error so the caller can try the next candidate name.
func fetchManifest(ctx context.Context, cfg Config, target *url.URL) ([]byte, int, error) {
	requestURL := *target
	query := requestURL.Query()
	query.Set("os", runtime.GOOS)
	query.Set("arch", runtime.GOARCH)
	query.Set("version", cfg.CurrentVersion)
	if cfg.InstallID != "" {
		query.Set("id", cfg.InstallID)
	}
	requestURL.RawQuery = query.Encode()

	req, err := newRequest(ctx, cfg, http.MethodGet, requestURL.String())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	slog.Debug("checking release feed", "requestURL", requestURL.Redacted())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, resp.StatusCode, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, resp.StatusCode, fmt.Errorf("%w: feed returned status %d", ErrUnreachable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, fmt.Errorf("%w: feed returned status %d", ErrNotFound, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, manifestSizeLimit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read manifest: %w", ErrUnreachable, err)
	}
	return data, resp.StatusCode, nil
}

type gitHubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Digest             string `json:"digest"`
}

type gitHubRelease struct {
	TagName string        `json:"tag_name"`
	Body    string        `json:"body"`
	Assets  []gitHubAsset `json:"assets"`
}

func resolveGitHub(ctx context.Context, cfg Config, repoURL *url.URL) (*Manifest, location, error) {
	parts := strings.Split(strings.Trim(repoURL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, location{}, fmt.Errorf("%w: %s is not a repository url", ErrInvalidConfig, repoURL.Redacted())
	}
	owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimSuffix(GitHubAPIBase, "/"), owner, repo)

	req, err := newRequest(ctx, cfg, http.MethodGet, apiURL)
	if err != nil {
		return nil, location{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	slog.Debug("checking github releases", "owner", owner, "repo", repo)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, location{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, location{}, fmt.Errorf("%w: %s/%s has no published release", ErrNotFound, owner, repo)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, location{}, fmt.Errorf("%w: github returned status %d", ErrUnreachable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, location{}, fmt.Errorf("%w: github returned status %d", ErrNotFound, resp.StatusCode)
	}

	var rel gitHubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, manifestSizeLimit)).Decode(&rel); err != nil {
		return nil, location{}, fmt.Errorf("%w: malformed github release: %w", ErrNotFound, err)
	}

	m := &Manifest{Name: repo}
	for _, asset := range rel.Assets {
		goos, goarch := platformFromName(asset.Name)
		if goos == "" || goarch == "" || !isExecutableAsset(asset.Name, goos) {
			slog.Debug("skipping github asset", "name", asset.Name)
			continue
		}
		m.Releases = append(m.Releases, Release{
			Version: rel.TagName,
			URL:     asset.BrowserDownloadURL,
			SHA256:  strings.TrimPrefix(asset.Digest, "sha256:"),
			OS:      goos,
			Arch:    goarch,
			Notes:   rel.Body,
		})
	}

	// Round-trip through the parser so github releases get the same validation as feeds.
	data, err := json.Marshal(m)
	if err != nil {
		return nil, location{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	parsed, err := ParseManifest(data)
	if err != nil {
		return nil, location{}, fmt.Errorf("%w: %s/%s@%s: %w", ErrNotFound, owner, repo, rel.TagName, err)
	}

	base, _ := url.Parse(apiURL)
	return parsed, location{remote: base}, nil
}

// platformFromName extracts GOOS/GOARCH tokens from an asset file name such
// as converter-1.3.0-windows-amd64.exe.
func platformFromName(name string) (string, string) {
	lower := strings.ToLower(name)
	var goos, goarch string
	for _, candidate := range knownOS {
		if strings.Contains(lower, candidate) {
			goos = candidate
			break
		}
	}
	for _, candidate := range knownArch {
		if strings.Contains(lower, candidate) {
			goarch = candidate
			break
		}
	}
	return goos, goarch
}

// sidecarSuffixes mark assets published next to a build that are not
// themselves installable.
var sidecarSuffixes = []string{
	".sha256", ".sha512", ".sha1", ".md5", ".sum", ".sig", ".asc", ".pem", ".crt",
	".sbom", ".spdx", ".txt", ".json", ".yaml", ".yml", ".md",
	".zip", ".tar", ".tar.gz", ".tgz", ".gz", ".xz", ".bz2", ".zst", ".7z",
	".msi", ".deb", ".rpm", ".dmg", ".pkg", ".apk", ".nupkg", ".blockmap",
}

// isExecutableAsset reports whether a release asset named for goos is the
// executable itself. Windows builds must end in .exe; other platforms take
// any name that is neither a Windows binary nor a known sidecar or archive.
func isExecutableAsset(name, goos string) bool {
	lower := strings.ToLower(name)
	if goos == "windows" {
		return strings.HasSuffix(lower, ".exe")
	}
	if strings.HasSuffix(lower, ".exe") {
		return false
	}
	for _, suffix := range sidecarSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

func newRequest(ctx context.Context, cfg Config, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s (%s %s) Go/%s", cfg.AppName, cfg.CurrentVersion, runtime.GOARCH, runtime.GOOS, runtime.Version()))
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	return req, nil
}
