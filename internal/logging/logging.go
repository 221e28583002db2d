// Package logging provides rotating file logging for the shell.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skratchdot/open-golang/open"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "app.log"

var (
	logMu     sync.Mutex
	logDir    string
	logOutput *lumberjack.Logger
)

// Init routes slog and the standard logger to a rotating file in dir.
// It should be called once at application startup; later calls are no-ops.
func Init(dir string, level slog.Level) error {
	logMu.Lock()
	defer logMu.Unlock()

	if logOutput != nil {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logDir = dir
	logOutput = &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxSize:    10, //MBs
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   false,
	}

	slog.SetDefault(slog.New(NewHandler(logOutput, level)))
	log.SetOutput(logOutput)
	log.SetFlags(log.LstdFlags)

	slog.Info("logging initialized", "path", logOutput.Filename)
	return nil
}

// NewHandler returns the text handler used for the log file, with source
// locations trimmed to the file name.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	})
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Dir() string {
	logMu.Lock()
	defer logMu.Unlock()
	return logDir
}

func Close() error {
	logMu.Lock()
	defer logMu.Unlock()
	if logOutput == nil {
		return nil
	}
	err := logOutput.Close()
	logOutput = nil
	return err
}

// OpenLogDirectory opens the log directory in the platform file manager.
func OpenLogDirectory() {
	dir := Dir()
	if dir == "" {
		slog.Warn("log directory not initialized")
		return
	}
	if err := open.Start(dir); err != nil {
		slog.Error("failed to open log directory", "path", dir, "error", err)
		showOpenFailure(dir)
	}
}
