package channel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Config identifies where releases come from and which local install they
// apply to. It is passed by value and never modified after construction.
type Config struct {
	// Source is a hosted feed URL, a https://github.com/<owner>/<repo> URL,
	// a file:// URL or a local directory/manifest path.
	Source string

	AppName        string
	CurrentVersion string

	// Executable is the file replaced by Apply. Defaults to os.Executable.
	Executable string

	// StageDir receives downloaded releases. Defaults to a directory under
	// the user cache dir.
	StageDir string

	// InstallID is sent with update checks so the feed can tell installs apart.
	InstallID string

	// Token is an optional bearer token for private feeds.
	Token string
}

// Validate reports whether the config can be used to open a channel.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: update source is empty", ErrInvalidConfig)
	}
	if c.CurrentVersion != "" {
		if _, err := goversion.NewVersion(c.CurrentVersion); err != nil {
			return fmt.Errorf("%w: current version %q: %w", ErrInvalidConfig, c.CurrentVersion, err)
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = "appshell"
	}
	if c.CurrentVersion == "" {
		c.CurrentVersion = "0.0.0"
	}
	if c.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			c.Executable = exe
		}
	}
	if c.StageDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		c.StageDir = filepath.Join(cacheDir, c.AppName, "updates")
	}
	return c
}
