package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vimgreet/vimgreet/internal/config"
	"github.com/vimgreet/vimgreet/internal/greeter"
	"github.com/vimgreet/vimgreet/internal/ipc"
	"github.com/vimgreet/vimgreet/internal/onboard"
	"github.com/vimgreet/vimgreet/internal/state"
	"github.com/vimgreet/vimgreet/internal/system"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	dryRun     bool
	verbose    bool
	logFile    string
	configPath string
	statePath  string

	rootCmd = &cobra.Command{
		Use:   "vimgreet",
		Short: "A vim-flavored console greeter for greetd.",
		Long: `vimgreet is a terminal login screen for the greetd session broker with
modal, vim-style editing. Run without arguments it presents the login
screen; the onboard subcommand runs the first-boot setup wizard instead.`,
		RunE: runGreeter,
	}

	onboardCmd = &cobra.Command{
		Use:   "onboard",
		Short: "Run the first-boot setup wizard.",
		Long: `Walks through first-boot setup: account creation, locale and keyboard
selection, network, package installation and reboot. Configured via ` + config.DefaultPath + `.`,
		RunE: runOnboard,
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Simulate every system operation; never touches the host")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	// The terminal belongs to the TUI, so logs go to a file or nowhere.
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file (default: discard)")

	rootCmd.Flags().StringVar(&statePath, "state-file", state.DefaultPath, "Where to remember the last login")
	onboardCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "Path to the onboarding config file")

	rootCmd.AddCommand(onboardCmd)

	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func setupLogging() {
	if logFile == "" {
		logrus.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
		logrus.SetOutput(io.Discard)
		return
	}
	logrus.SetOutput(f)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func runGreeter(cmd *cobra.Command, args []string) error {
	setupLogging()
	logrus.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"version": releaseVersion,
		"dry_run": dryRun,
	}).Info("starting greeter")

	if dryRun {
		started, err := greeter.Run(ipc.NewDemoClient(), system.DemoSessions(), system.DemoUsers(), nil, true)
		if err != nil {
			return fmt.Errorf("greeter: %w", err)
		}
		logrus.WithField("started", started).Info("demo greeter exited")
		return nil
	}

	client, err := ipc.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	st, err := state.NewOrExisting(statePath)
	if err != nil {
		logrus.WithError(err).Warn("login state unavailable")
		st = nil
	}

	started, err := greeter.Run(client, system.DiscoverSessions(), system.DiscoverUsers(), st, false)
	if err != nil {
		return fmt.Errorf("greeter: %w", err)
	}
	if started {
		logrus.Info("session started, handing over")
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	setupLogging()
	logrus.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"version": releaseVersion,
	}).Info("starting setup wizard")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.General.DryRun {
		dryRun = true
	}

	toLogin, err := onboard.Run(cfg, system.NewRunner(dryRun), dryRun)
	if err != nil {
		return fmt.Errorf("setup wizard: %w", err)
	}
	if !toLogin {
		return nil
	}

	// A completed simulated run flows straight into the demo login screen.
	started, err := greeter.Run(ipc.NewDemoClient(), system.DemoSessions(), system.DemoUsers(), nil, true)
	if err != nil {
		return fmt.Errorf("greeter: %w", err)
	}
	logrus.WithField("started", started).Info("demo greeter exited")
	return nil
}
