package channel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// Manifest is the release feed document. It may be written as YAML or JSON.
type Manifest struct {
	Name     string    `json:"name" yaml:"name"`
	Releases []Release `json:"releases" yaml:"releases"`
}

// Release is one published build.
type Release struct {
	Version string `json:"version" yaml:"version"`
	URL     string `json:"url" yaml:"url"`
	SHA256  string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	OS      string `json:"os,omitempty" yaml:"os,omitempty"`
	Arch    string `json:"arch,omitempty" yaml:"arch,omitempty"`
	Notes   string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Matches reports whether the release can be installed on goos/goarch.
// Empty OS or Arch fields match any platform.
func (r Release) Matches(goos, goarch string) bool {
	if r.OS != "" && !strings.EqualFold(r.OS, goos) {
		return false
	}
	if r.Arch != "" && !strings.EqualFold(r.Arch, goarch) {
		return false
	}
	return true
}

// ParseManifest decodes a manifest. JSON documents are detected by their
// leading brace; everything else is decoded as YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty manifest")
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("decode json manifest: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("decode yaml manifest: %w", err)
	}

	if len(m.Releases) == 0 {
		return nil, errors.New("manifest lists no releases")
	}
	for i, r := range m.Releases {
		if r.URL == "" {
			return nil, fmt.Errorf("release %d has no url", i)
		}
		if _, err := goversion.NewVersion(r.Version); err != nil {
			return nil, fmt.Errorf("release %d has invalid version %q: %w", i, r.Version, err)
		}
	}
	return &m, nil
}

// Latest returns the highest version published for goos/goarch, or nil.
func (m *Manifest) Latest(goos, goarch string) (*Release, *goversion.Version) {
	var (
		best    *Release
		bestVer *goversion.Version
	)
	for i := range m.Releases {
		r := &m.Releases[i]
		if !r.Matches(goos, goarch) {
			continue
		}
		v, err := goversion.NewVersion(r.Version)
		if err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = r, v
		}
	}
	return best, bestVer
}
