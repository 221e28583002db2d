package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ReEnvision-AI/appshell/internal/logging"
	"github.com/ReEnvision-AI/appshell/version"
)

var logLevel string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "appshell",
		Short:        "Converter application shell",
		Long:         "Runs the Converter shell and inspects its release channel.",
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, logging.ParseLevel(logLevel))))
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for command output (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCmd(), newCheckCmd(), newVersionCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the shell with its tray icon",
		Long:  "Start the shell. Installer lifecycle flags such as --squirrel-install are honoured.",
		// Lifecycle flags are parsed by the shell itself.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		Run: func(cmd *cobra.Command, args []string) {
			runShell()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Version)
		},
	}
}
