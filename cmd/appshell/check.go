package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReEnvision-AI/appshell/app/channel"
	"github.com/ReEnvision-AI/appshell/app/lifecycle"
	"github.com/ReEnvision-AI/appshell/version"
)

type checkOptions struct {
	source     string
	current    string
	executable string
	stageDir   string
	token      string
	apply      bool
	timeout    time.Duration
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a release channel for a newer version",
		Long: `Resolve the release manifest at --source and report whether a newer
release than --current exists. With --apply the release is downloaded and
applied to --executable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runCheck(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "release feed URL, GitHub repository URL or local directory")
	cmd.Flags().StringVar(&opts.current, "current", version.Version, "version to compare against")
	cmd.Flags().StringVar(&opts.executable, "executable", "", "file replaced by --apply (default: this executable)")
	cmd.Flags().StringVar(&opts.stageDir, "stage-dir", "", "download staging directory")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token for private feeds")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "download and apply the newer release")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall timeout")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, opts checkOptions) error {
	cfg := channel.Config{
		Source:         opts.source,
		CurrentVersion: opts.current,
		Executable:     opts.executable,
		StageDir:       opts.stageDir,
		Token:          opts.token,
	}

	if opts.apply {
		out := (&lifecycle.Updater{}).RunUpdateCycle(ctx, cfg)
		switch out.Status {
		case lifecycle.Updated:
			cmd.Printf("updated to %s\n", out.Version)
		case lifecycle.NoUpdateAvailable:
			cmd.Printf("%s is up to date\n", opts.current)
		default:
			return out.Err
		}
		return nil
	}

	h, err := channel.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	info, err := h.CheckForUpdate(ctx)
	if err != nil {
		return err
	}
	if !info.Available() {
		cmd.Printf("%s is up to date\n", opts.current)
		return nil
	}

	cmd.Printf("update available: %s\n", info.Version())
	cmd.Printf("  url: %s\n", info.Release.URL)
	if info.Release.SHA256 != "" {
		cmd.Printf("  sha256: %s\n", info.Release.SHA256)
	}
	if info.Release.Notes != "" {
		cmd.Printf("  notes: %s\n", info.Release.Notes)
	}
	return nil
}
