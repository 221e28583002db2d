package lifecycle

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

var (
	AppName    = "Converter"
	Publisher  = "ReEnvision AI"
	AppDataDir = filepath.Join(os.TempDir(), "converter")

	UpdateStageDir = filepath.Join(AppDataDir, "updates")
	LogDir         = AppDataDir
	StoreFile      = filepath.Join(AppDataDir, "store.json")
	ConfigFile     = filepath.Join(AppDataDir, "config.json")

	// DefaultUpdateSource is used when config.json names no update source.
	// Overridden at build time with -ldflags -X.
	DefaultUpdateSource = "https://github.com/ReEnvision-AI/converter"
)

func init() {
	var base string
	switch runtime.GOOS {
	case "windows":
		// Logs, configs, downloads go to LOCALAPPDATA
		base = os.Getenv("LOCALAPPDATA")
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			slog.Warn("error discovering config directory", "error", err)
		}
		base = dir
	}
	if base == "" {
		return
	}

	AppDataDir = filepath.Join(base, AppName)
	UpdateStageDir = filepath.Join(AppDataDir, "updates")
	LogDir = AppDataDir
	StoreFile = filepath.Join(AppDataDir, "store.json")
	ConfigFile = filepath.Join(AppDataDir, "config.json")
}
