package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/db"
	"github.com/hpungsan/orbit/internal/logging"
	"github.com/hpungsan/orbit/internal/mcp"
	"github.com/hpungsan/orbit/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"run": true, "shell": true, "tokens": true,
	"contact": true, "constellation": true,
	"tags": true, "timeline": true, "purge": true, "ui": true,
	"help": true, "h": true,
}

// parseGlobal splits os.Args-style args into the --config overlay path and
// the first non-flag argument (the subcommand, if any).
func parseGlobal(args []string) (overlay, first string) {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				overlay = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			overlay = strings.TrimPrefix(arg, "--config=")
		default:
			return overlay, arg
		}
	}
	return overlay, ""
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	_, first := parseGlobal(args)
	if first == "" {
		return false // No subcommand → MCP server
	}
	return cliCommands[first] || isHelpOrVersion(args)
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	_, first := parseGlobal(args)
	switch first {
	case "--help", "-h", "--version", "-v", "help", "h":
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
    ___  ____  ____  ___ _____
   / _ \|  _ \| __ )|_ _|_   _|
  | | | | |_) |  _ \ | |  | |
  | |_| |  _ <| |_) || |  | |
   \___/|_| \_\____/|___| |_|

  Keep the people who matter in orbit

  Usage: orbit <command> [options]
         orbit run '@Sarah !Coffee #work'
         orbit --help

  MCP server mode requires piped input.`)
}

func main() {
	overlay, first := parseGlobal(os.Args)

	// No args + interactive terminal → show banner and exit
	if first == "" && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if first != "" && !isCLIMode(os.Args) && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", first)
		fmt.Fprintf(os.Stderr, "Run 'orbit --help' for usage.\n")
		os.Exit(1)
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithOverlay(baseDir, overlay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	exec := ops.NewExecutor(database,
		ops.WithLogger(logger),
		ops.WithValidator(ops.NewLimitValidator(cfg)),
		ops.WithDefaultOrbit(cfg.Orbit()),
	)

	// CLI mode: known subcommand
	if isCLIMode(os.Args) {
		app := newCLIApp(exec, cfg, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(exec, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		database.Close()
		os.Exit(1)
	}
}
