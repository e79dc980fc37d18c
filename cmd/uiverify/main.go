// Package main provides the uiverify command: it drives a headless Chromium
// against a locally served site to capture mobile layouts before and after a
// change and to exercise the registration and login flow.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/uiverify/pkg/browser"
	"github.com/entrhq/uiverify/pkg/config"
	"github.com/entrhq/uiverify/pkg/logging"
	"github.com/entrhq/uiverify/pkg/runner"
	"github.com/entrhq/uiverify/pkg/scenario"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Scenario    string
	BaseURL     string
	OutputDir   string
	Headless    bool
	Timeout     time.Duration
	Verbosity   string
	LogDir      string
	Install     bool
	ShowVersion bool

	// set records which flags were given explicitly so they win over the file
	set map[string]bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("uiverify v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cliConfig); err != nil {
		cancel()
		log.Printf("Verification failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	defaults := config.DefaultConfig()
	cliConfig := &CLIConfig{}

	flag.StringVar(&cliConfig.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cliConfig.Scenario, "scenario", scenario.NameAll, "Scenario to run: capture-before, capture-after, login or all")
	flag.StringVar(&cliConfig.BaseURL, "base-url", defaults.BaseURL, "Base URL of the running site")
	flag.StringVar(&cliConfig.OutputDir, "output", defaults.OutputDir, "Directory for layout captures")
	flag.BoolVar(&cliConfig.Headless, "headless", defaults.Headless, "Run the browser without a window")
	flag.DurationVar(&cliConfig.Timeout, "timeout", defaults.Timeout, "Timeout for each scenario run")
	flag.StringVar(&cliConfig.Verbosity, "verbosity", defaults.Logging.Verbosity, "Console verbosity: quiet, normal, verbose or debug")
	flag.StringVar(&cliConfig.LogDir, "log-dir", "", "Directory for the debug log (default ~/.uiverify/logs)")
	flag.BoolVar(&cliConfig.Install, "install", defaults.InstallBrowsers, "Download the Playwright driver and Chromium if missing")
	flag.BoolVar(&cliConfig.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "uiverify - mobile layout captures and login flow checks\n\n")
		fmt.Fprintf(os.Stderr, "Usage: uiverify [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Capture the current layout before a change\n")
		fmt.Fprintf(os.Stderr, "  uiverify -scenario capture-before\n\n")
		fmt.Fprintf(os.Stderr, "  # Register and log in against a staging server\n")
		fmt.Fprintf(os.Stderr, "  uiverify -scenario login -base-url https://staging.example.com\n\n")
		fmt.Fprintf(os.Stderr, "  # Everything, with settings from a file\n")
		fmt.Fprintf(os.Stderr, "  uiverify -config uiverify.yaml\n\n")
	}

	flag.Parse()

	cliConfig.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		cliConfig.set[f.Name] = true
	})
	return cliConfig
}

// run executes the selected scenarios
func run(ctx context.Context, cliConfig *CLIConfig) error {
	cfg, err := loadConfig(cliConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	consoleLevel, err := browser.ParseConsoleLevel(cfg.ConsoleLevel)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gen := scenario.NewCredentialGenerator(cfg.Login.EmailDomain, cfg.Login.Password)
	scenarios, err := scenario.Select(cliConfig.Scenario, cfg, gen)
	if err != nil {
		return err
	}

	debugLog, err := openDebugLog(cfg.Logging)
	if err != nil {
		return err
	}
	defer debugLog.Close()
	debugLog.Infof("uiverify v%s: scenario=%s base_url=%s output=%s", version, cliConfig.Scenario, cfg.BaseURL, cfg.OutputDir)

	console := runner.NewLogger(runner.ParseLogLevel(cfg.Logging.Verbosity)).WithDebugLog(debugLog)
	console.Verbosef("debug log: %s (session %s)", debugLog.LogPath(), debugLog.SessionID())

	manager := browser.NewSessionManager(
		browser.WithInstall(cfg.InstallBrowsers),
		browser.WithDebugLogger(debugLog),
		// Scenarios run one after another, each in its own session
		browser.WithMaxSessions(1),
	)
	defer func() {
		if manager.HasSessions() {
			console.Verbosef("closing browser sessions left open")
		}
		if shutdownErr := manager.Shutdown(); shutdownErr != nil {
			console.Warningf("playwright shutdown: %v", shutdownErr)
		}
	}()

	if cfg.InstallBrowsers {
		console.Infof("Preparing Playwright and Chromium...")
	}
	if initErr := manager.Initialize(); initErr != nil {
		return fmt.Errorf("failed to initialize browser: %w", initErr)
	}

	r, err := runner.New(scenario.Launcher(manager), runner.Options{
		BaseURL:      cfg.BaseURL,
		OutputDir:    cfg.OutputDir,
		ConsoleLevel: consoleLevel,
		Timeout:      cfg.Timeout,
	}, console)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	results, err := r.RunAll(ctx, scenarios)
	failed := 0
	for _, res := range results {
		if res.Status != runner.StatusSuccess {
			failed++
		}
	}
	if err != nil {
		return fmt.Errorf("%d of %d scenarios failed: %w", failed, len(scenarios), err)
	}
	return nil
}

// loadConfig reads the optional config file and applies explicit flags on top
func loadConfig(cliConfig *CLIConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cliConfig.ConfigFile != "" {
		loaded, err := config.Load(cliConfig.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Without a file every flag value applies, defaults included
	override := func(name string) bool {
		return cliConfig.ConfigFile == "" || cliConfig.set[name]
	}

	if override("base-url") {
		cfg.BaseURL = cliConfig.BaseURL
	}
	if override("output") {
		cfg.OutputDir = cliConfig.OutputDir
	}
	if override("headless") {
		cfg.Headless = cliConfig.Headless
	}
	if override("timeout") {
		cfg.Timeout = cliConfig.Timeout
	}
	if override("verbosity") {
		cfg.Logging.Verbosity = cliConfig.Verbosity
	}
	if cliConfig.LogDir != "" {
		cfg.Logging.Dir = cliConfig.LogDir
	}
	if override("install") {
		cfg.InstallBrowsers = cliConfig.Install
	}
	return cfg, nil
}

// openDebugLog creates the per-process debug log. The file is best effort:
// when it cannot be opened the returned logger writes warnings to stderr.
func openDebugLog(lc config.LoggingConfig) (*logging.Logger, error) {
	level, err := logging.ParseLevel(lc.FileLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if lc.Dir != "" {
		logging.SetLogDirectory(lc.Dir)
	}

	debugLog, logErr := logging.NewLogger("uiverify")
	if logErr == nil {
		debugLog.SetLevel(level)
	}
	return debugLog, nil
}
