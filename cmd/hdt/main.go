// Package main is the entry point for the Hospital Dashboard TUI application.
// It wires configuration and services into the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hospital-dashboard-tui/internal/app"
	"github.com/j-veylop/hospital-dashboard-tui/internal/config"
	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/tabs/history"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/tabs/records"
	"github.com/j-veylop/hospital-dashboard-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Logging goes to a file; the terminal belongs to the TUI
	logCloser, err := logger.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	logger.Info("starting", "version", version.GetVersion(), "backend", cfg.BackendURL)

	// 3. The shared state doubles as the display the dashboard controller renders into
	state := app.NewState()
	svcManager, err := services.NewManager(cfg, state)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root model and its tabs, in the order of the 1-4 keys
	model := app.NewModel(svcManager, state)
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		records.New(state, svcManager),
		history.New(state, svcManager),
		info.New(state, svcManager),
	})

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 6. Run the TUI program; this blocks until the user quits
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Hospital Dashboard TUI - bed, admission and staffing KPIs in the terminal

Usage:
  hdt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch tabs (Dashboard, Records, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Move between filter controls, rows
  h/l, Left/Right Change the focused selector
  Space           Toggle a ward or doctor
  Enter           Edit a date / press the focused button
  a               Apply filters
  c               Clear the focused control
  r, Ctrl+R       Refresh now
  t               Toggle auto refresh
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  BACKEND_URL                Analytics backend origin
  AUTO_REFRESH_INTERVAL      Auto refresh period (default: 60s)
  DATABASE_PATH              SQLite KPI history path
  PRESETS_PATH               Filter presets JSON path
  OCCUPANCY_ALERT_THRESHOLD  Desktop alert threshold in percent, 0 disables (default: 90)
  LOG_FILE                   Log file path (default: logging disabled)
  LOG_LEVEL                  debug, info, warn or error (default: info)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/hospital-dashboard/.env
  - Parent directories of the current directory`)
}
