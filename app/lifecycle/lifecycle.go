package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ncruces/zenity"

	"github.com/ReEnvision-AI/appshell/app/channel"
	"github.com/ReEnvision-AI/appshell/app/install"
	"github.com/ReEnvision-AI/appshell/app/store"
	"github.com/ReEnvision-AI/appshell/app/tray"
	"github.com/ReEnvision-AI/appshell/app/tray/commontray"
	"github.com/ReEnvision-AI/appshell/internal/config"
	"github.com/ReEnvision-AI/appshell/internal/logging"
	"github.com/ReEnvision-AI/appshell/version"
)

// launcher is what Run takes from the process environment.
type launcher struct {
	args       []string
	configFile string
	storeFile  string
	actions    func(cfg config.AppConfig) *install.Actions
}

func defaultActions(cfg config.AppConfig) *install.Actions {
	actions := install.New(cfg.AppName, cfg.Publisher)
	actions.ShortcutName = cfg.ShortcutName
	return actions
}

func defaultConfig() config.AppConfig {
	return config.AppConfig{
		AppName:      AppName,
		Publisher:    Publisher,
		UpdateSource: DefaultUpdateSource,
	}
}

// loadConfig returns the defaults together with the error when config.json
// cannot be used, so lifecycle events can still be handled.
func (l launcher) loadConfig() (config.AppConfig, error) {
	cfg, err := config.LoadConfig(l.configFile, defaultConfig())
	if err != nil {
		return defaultConfig(), err
	}
	return cfg, nil
}

func (l launcher) bootstrap(cfg config.AppConfig, entry MainEntryPoint) *Bootstrap {
	st := store.New(l.storeFile)
	actions := l.actions(cfg)

	return New(Options{
		Args:    l.args,
		Channel: channelConfig(cfg, st),
		Entry:   entry,
		Router: &Router{
			Installer: actions,
			Store:     st,
			OnUninstall: func(_ context.Context, t install.Target) error {
				return actions.RemoveInstall(t)
			},
		},
		Updater: &Updater{StartDelay: cfg.UpdateCheckDelay()},
	})
}

// Run is the process entry point of the shell. It handles lifecycle events,
// then shows the tray and hands it to entry. It returns when the tray quits.
func Run(entry MainEntryPoint) {
	l := launcher{
		args:       os.Args[1:],
		configFile: ConfigFile,
		storeFile:  StoreFile,
		actions:    defaultActions,
	}

	cfg, cfgErr := l.loadConfig()
	InitLogging(cfg.LogLevel)
	defer logging.Close()

	slog.Info(AppName+" app starting", "version", version.Version, "args", l.args)
	if cfgErr != nil {
		slog.Error("failed to load configuration, using defaults", "path", l.configFile, "error", cfgErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := l.bootstrap(cfg, entry)
	mode, err := b.Start(ctx)
	if mode == ModeExit && err == nil {
		slog.Info(AppName+" lifecycle event handled, exiting", "event", b.Event())
		return
	}
	if err != nil {
		fatal("Failed to start", err)
	}
	if cfgErr != nil {
		fatal("Failed to load configuration", cfgErr)
	}

	w, err := tray.NewTray()
	if err != nil {
		fatal("Failed to start", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		slog.Debug("shutting down due to signal")
		w.Quit()
	}()

	w.Run(func() { b.Activated(w) })

	cancel()
	slog.Info(AppName + " app exiting")
}

func channelConfig(cfg config.AppConfig, st *store.Store) channel.Config {
	return channel.Config{
		Source:         cfg.UpdateSource,
		AppName:        cfg.AppName,
		CurrentVersion: version.Version,
		StageDir:       UpdateStageDir,
		InstallID:      st.GetID(),
		Token:          cfg.Token,
	}
}

func fatal(title string, err error) {
	slog.Error(title, "error", err)
	if derr := zenity.Error(fmt.Sprintf("%s: %s", title, err),
		zenity.Title(commontray.Title),
		zenity.ErrorIcon); derr != nil {
		slog.Debug("failed to show error dialog", "error", derr)
	}
	logging.Close()
	os.Exit(1)
}
