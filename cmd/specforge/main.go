package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/specforge/internal/config"
	"github.com/hpungsan/specforge/internal/db"
	"github.com/hpungsan/specforge/internal/llm"
	"github.com/hpungsan/specforge/internal/logging"
	"github.com/hpungsan/specforge/internal/mcp"
	"github.com/hpungsan/specforge/internal/prompts"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"create": true, "predict": true, "optimize": true,
	"show": true, "list": true, "export": true, "delete": true,
	"repair": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _ __   ___  ___ / _| ___  _ __ __ _  ___
  / __| '_ \ / _ \/ __| |_ / _ \| '__/ _' |/ _ \
  \__ \ |_) |  __/ (__|  _| (_) | | | (_| |  __/
  |___/ .__/ \___|\___|_|  \___/|_|  \__, |\___|
      |_|                            |___/

  Project plans from free text

  Usage: specforge <command> [options]
         specforge --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".specforge")

	cwd, err := os.Getwd()
	if err != nil {
		fail("could not determine working directory: %v", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fail("%v", err)
	}
	defer logger.Sync() //nolint:errcheck

	set, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		fail("failed to load prompts: %v", err)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	env := &appEnv{
		db:      database,
		cfg:     cfg,
		logger:  logger,
		prompts: set,
		newGenerator: func(ctx context.Context) (llm.Generator, error) {
			return llm.New(ctx, cfg)
		},
	}

	if isCLIMode() {
		if err := newCLIApp(env).Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'specforge --help' for usage.\n")
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled tools", zap.Strings("tools", unknown))
	}

	// The server starts without a generator when no key is configured so the
	// read-only tools stay usable. Plan tools then fail with GENERATION_FAILED.
	gen, genErr := env.newGenerator(context.Background())
	if genErr != nil {
		logger.Warn("generator unavailable", zap.Error(genErr))
		gen = llm.Func(func(context.Context, string) (string, error) { return "", genErr })
	}

	err = mcp.Run(mcp.Deps{
		DB:        database,
		Config:    cfg,
		Generator: gen,
		Prompts:   set,
		Logger:    logger,
	}, Version)
	if err != nil {
		fail("%v", err)
	}
}
