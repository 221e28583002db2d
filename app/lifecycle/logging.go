package lifecycle

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ReEnvision-AI/appshell/internal/logging"
)

// InitLogging sends the default logger to the rotating app log. If the log
// file cannot be created, logging falls back to stderr.
func InitLogging(level string) {
	lvl := logging.ParseLevel(level)
	if err := logging.Init(LogDir, lvl); err != nil {
		slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, lvl)))
		slog.Error(fmt.Sprintf("failed to create log %v", err))
		return
	}
	slog.Info(AppName + " logging starting")
}

func ShowLogs() {
	slog.Debug("viewing logs", "dir", LogDir)
	logging.OpenLogDirectory()
}
