package main

import (
	"fmt"
	"os"
	"path/filepath"

	hackos "github.com/hack-pad/hackpadfs/os"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hpungsan/profreach/internal/config"
	"github.com/hpungsan/profreach/internal/docstore"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/mcp"
	"github.com/hpungsan/profreach/internal/notify"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/repo"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "list": true, "show": true, "update": true, "delete": true,
	"profile": true, "memory": true, "docs": true, "drafts": true,
	"lookup": true, "email": true, "chat": true,
	"export": true, "import": true, "key": true, "serve": true,
	"help": true,
}

// app bundles everything a command needs.
type app struct {
	baseDir    string
	kvDir      string
	exportsDir string
	cfg        *config.Config
	log        *zap.Logger
	bus        *notify.Bus
	kv         *kvstore.Store
	docs       *docstore.Store
	repo       *repo.Repo
	ai         oracle.Oracle
}

// newApp wires up storage, config, and the AI client under baseDir.
func newApp(baseDir string) (*app, error) {
	kvDir := filepath.Join(baseDir, "kv")
	if err := os.MkdirAll(kvDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	osfs := hackos.NewFS()
	kvPath, err := osfs.FromOSPath(kvDir)
	if err != nil {
		return nil, err
	}
	kvFS, err := osfs.Sub(kvPath)
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus()
	kv := kvstore.New(kvFS, bus)
	docs := docstore.New(filepath.Join(baseDir, "documents.db"), kv, bus, repo.KeyDocuments)
	r := repo.New(kv, docs)

	// The stored key wins over the environment so the user can rotate keys
	// without restarting their shell.
	apiKey := func() string {
		if key := r.APIKey(); key != "" {
			return key
		}
		return os.Getenv("GEMINI_API_KEY")
	}
	ai := oracle.NewGemini(cfg.GeminiModel, cfg.LookupModel, apiKey, log)

	return &app{
		baseDir:    baseDir,
		kvDir:      kvDir,
		exportsDir: filepath.Join(baseDir, "exports"),
		cfg:        cfg,
		log:        log,
		bus:        bus,
		kv:         kv,
		docs:       docs,
		repo:       r,
		ai:         ai,
	}, nil
}

// close releases held resources.
func (a *app) close() {
	if a.docs != nil {
		a.docs.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
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
	return false // Default → MCP server
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
                 __                      _
   ___  _______ / _|_______ ___ _____ __| |_
  / _ \/ __/ _ \ |_/ __/ _ \/ _ \ / _/ _ \ _|
  | .__/_| \___/_| |_| \___|\___|_\__\_._/__|
  |_|

  Professor outreach tracker

  Usage: profreach <command> [options]
         profreach --help

  MCP server mode requires piped input.`)
}

func main() {
	// Ignore a missing .env; the environment may already be set.
	_ = godotenv.Load()

	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before storage init (no storage needed)
	if isHelpOrVersion() {
		cliApp := newCLIApp(nil)
		if err := cliApp.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(filepath.Join(homeDir, ".profreach"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	// CLI mode: known subcommand
	if isCLIMode() {
		cliApp := newCLIApp(a)
		if err := cliApp.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'profreach --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default). Watch the kv directory so edits from a
	// concurrent serve process surface on this bus too.
	watcher, err := kvstore.NewWatcher(a.kvDir, a.bus, a.log)
	if err != nil {
		a.log.Warn("storage watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	if err := mcp.Run(a.repo, a.ai, a.cfg, a.exportsDir, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
