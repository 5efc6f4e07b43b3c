// Package main provides the mirror command.
// It opens one controlling browser window and a set of follower windows,
// then replays every click, text entry, scroll and navigation performed in
// the controlling window onto each follower.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/mirror/pkg/browser"
	"github.com/entrhq/mirror/pkg/config"
	"github.com/entrhq/mirror/pkg/logging"
	"github.com/entrhq/mirror/pkg/mirror"
)

const (
	version = "0.1.0" // Version of the mirror command

	configEnv = "MIRROR_CONFIG" // Config file path when -config is not set
)

// cliFlags holds raw flag values before they are applied to the config
type cliFlags struct {
	configPath     string
	startURL       string
	followers      int
	headless       bool
	channel        string
	actionTimeout  time.Duration
	skipInstall    bool
	actionInterval time.Duration
	urlInterval    time.Duration
	verbosity      string
	logDir         string
	showVersion    bool
}

func main() {
	cfg, showVersion, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if showVersion {
		fmt.Printf("Mirror v%s\n", version)
		return
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// parseFlags builds the run configuration from defaults, the optional config
// file and command line flags, in that order of precedence.
func parseFlags(args []string, output io.Writer) (*config.Config, bool, error) {
	defaults := config.Default()
	f := &cliFlags{}

	fs := flag.NewFlagSet("mirror", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.configPath, "config", os.Getenv(configEnv), "Path to YAML configuration file (or set "+configEnv+" env var)")
	fs.StringVar(&f.startURL, "url", defaults.StartURL, "Start URL loaded in every window")
	fs.IntVar(&f.followers, "followers", defaults.Followers, fmt.Sprintf("Number of follower windows (1-%d)", config.MaxFollowers))
	fs.BoolVar(&f.headless, "headless", defaults.Browser.Headless, "Hide browser windows")
	fs.StringVar(&f.channel, "channel", defaults.Browser.Channel, "Installed browser channel (chrome, msedge); empty uses bundled chromium")
	fs.DurationVar(&f.actionTimeout, "action-timeout", defaults.Browser.ActionTimeout, "Timeout for each follower click, fill and scroll")
	fs.BoolVar(&f.skipInstall, "skip-install", defaults.Browser.SkipInstall, "Skip the browser driver install check")
	fs.DurationVar(&f.actionInterval, "action-interval", defaults.Replication.ActionInterval, "How often captured actions are drained")
	fs.DurationVar(&f.urlInterval, "url-interval", defaults.Replication.URLInterval, "How often the controller URL is checked")
	fs.StringVar(&f.verbosity, "verbosity", defaults.Logging.Verbosity, "Console verbosity: quiet, normal, verbose, debug")
	fs.StringVar(&f.logDir, "log-dir", "", "Session log directory (default ~/.mirror/logs)")
	fs.BoolVar(&f.showVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "Mirror - replicate browser interactions across windows\n\n")
		fmt.Fprintf(output, "Usage: mirror [options]\n\n")
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nEnvironment Variables:\n")
		fmt.Fprintf(output, "  %s      Path to YAML configuration file\n", configEnv)
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  mirror                                   # 5 followers on https://google.com\n")
		fmt.Fprintf(output, "  mirror -url https://example.com -followers 3\n")
		fmt.Fprintf(output, "  mirror -config mirror.yaml -verbosity debug\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if f.showVersion {
		return nil, true, nil
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, false, err
	}

	// Only flags given explicitly override the file
	fs.Visit(func(fl *flag.Flag) {
		f.apply(fl.Name, cfg)
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// apply copies one explicitly set flag into cfg
func (f *cliFlags) apply(name string, cfg *config.Config) {
	switch name {
	case "url":
		cfg.StartURL = f.startURL
	case "followers":
		cfg.Followers = f.followers
	case "headless":
		cfg.Browser.Headless = f.headless
	case "channel":
		cfg.Browser.Channel = f.channel
	case "action-timeout":
		cfg.Browser.ActionTimeout = f.actionTimeout
	case "skip-install":
		cfg.Browser.SkipInstall = f.skipInstall
	case "action-interval":
		cfg.Replication.ActionInterval = f.actionInterval
	case "url-interval":
		cfg.Replication.URLInterval = f.urlInterval
	case "verbosity":
		cfg.Logging.Verbosity = f.verbosity
	case "log-dir":
		cfg.Logging.Dir = f.logDir
	}
}

// mirrorOptions maps replication settings onto the mirror package
func mirrorOptions(cfg *config.Config) (mirror.Options, error) {
	kinds := make([]mirror.Kind, 0, len(cfg.Replication.Actions))
	for _, name := range cfg.Replication.Actions {
		kind, err := mirror.ParseKind(name)
		if err != nil {
			return mirror.Options{}, err
		}
		kinds = append(kinds, kind)
	}

	return mirror.Options{
		ActionInterval: cfg.Replication.ActionInterval,
		URLInterval:    cfg.Replication.URLInterval,
		Actions:        kinds,
		IgnoreURLs:     cfg.Replication.IgnoreURLs,
	}, nil
}

// browserOptions maps browser settings onto the browser package
func browserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		Headless: cfg.Browser.Headless,
		Channel:  cfg.Browser.Channel,
		Viewport: browser.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
		ActionTimeout:     cfg.Browser.ActionTimeout,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SkipInstall:       cfg.Browser.SkipInstall,
	}
}

// run opens the windows and replicates until interrupted or the controlling
// window closes.
func run(ctx context.Context, cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Logging.Verbosity)
	if err != nil {
		return err
	}

	logger, logErr := logging.New(logging.Options{
		Component:   "mirror",
		Dir:         cfg.Logging.Dir,
		DisableFile: !cfg.Logging.File,
		Level:       level,
	})
	if logErr != nil {
		logger.Warnf("Session log disabled: %v", logErr)
	}
	defer logger.Close()

	opts, err := mirrorOptions(cfg)
	if err != nil {
		return err
	}

	logger.Infof("Opening %d follower window(s) on %s", cfg.Followers, cfg.StartURL)
	manager := browser.NewManager(browserOptions(cfg))
	defer func() {
		if shutdownErr := manager.Shutdown(); shutdownErr != nil {
			logger.Warnf("Browser shutdown: %v", shutdownErr)
		}
	}()

	if err := manager.Initialize(); err != nil {
		return err
	}

	session, err := manager.OpenSession(cfg.Followers, cfg.StartURL)
	if err != nil {
		return err
	}
	logger.Debugf("Opened %d window(s)", len(manager.Windows()))

	followers := make([]mirror.Follower, len(session.Followers))
	for i, w := range session.Followers {
		followers[i] = w
	}

	m, err := mirror.New(session.Controller, followers, opts, logger.With("replicator"))
	if err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("Controller: %s", session.Controller.WindowName()),
		fmt.Sprintf("Followers:  %d", len(followers)),
		fmt.Sprintf("Start URL:  %s", cfg.StartURL),
	}
	if path := logger.LogPath(); path != "" {
		lines = append(lines, fmt.Sprintf("Log file:   %s", path))
	}
	lines = append(lines, "", "Perform actions in the controlling window to replicate them.", "Press Ctrl+C to stop.")
	logger.Header("Mirror session "+logger.SessionID(), lines...)

	runErr := m.Run(ctx)
	switch {
	case runErr == nil:
		logger.Infof("Stopping replication...")
	case errors.Is(runErr, mirror.ErrControllerClosed):
		logger.Infof("Controlling window closed, stopping replication...")
		runErr = nil
	}

	logger.Infof("Replication summary: %s", m.Stats())
	return runErr
}
