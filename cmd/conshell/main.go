// Package main provides the conshell CLI entry point: a standalone
// interactive console wired to a small demo evaluator. Embedders normally
// import pkg/console directly; this binary exists to exercise the full
// loop from a terminal or a batch script.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"conshell/internal/logger"
	"conshell/pkg/command"
	"conshell/pkg/command/builtin"
	"conshell/pkg/console"
	"conshell/pkg/contypes"
)

// EnvRCFile overrides the RC env-file location.
const EnvRCFile = "CONSHELL_RC"

var (
	logLevel    string
	logFile     string
	historyFile string
	noColor     bool
	testMode    bool
	version     = "0.1.0" // set at build time
)

var rootCmd = &cobra.Command{
	Use:   "conshell",
	Short: "conshell - embeddable interactive command console",
	Long: `conshell is an embeddable line-oriented console: typed input is either
dispatched to a registered command or accumulated as a multi-line
expression and handed to a host evaluator.`,
	Run: runShell,
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive console",
	Run:   runShell,
}

var batchCmd = &cobra.Command{
	Use:   "batch <script>",
	Short: "Feed a script file through the console loop non-interactively",
	Args:  cobra.ExactArgs(1),
	Run:   runBatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("conshell v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "History file location")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI styling")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")

	for _, name := range []string{"log-level", "log-file", "history-file", "no-color", "test-mode"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	loadRCFile()
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// loadRCFile loads environment defaults from the RC file, resolved as:
// explicit override variable, then ~/.conshellrc, then the XDG config
// directory. A missing file is fine.
func loadRCFile() {
	path := os.Getenv(EnvRCFile)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path = filepath.Join(home, ".conshellrc")
		if _, err := os.Stat(path); err != nil {
			configHome := os.Getenv("XDG_CONFIG_HOME")
			if configHome == "" {
				configHome = filepath.Join(home, ".config")
			}
			path = filepath.Join(configHome, "conshell", "rc")
		}
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load rc file", "path", path, "error", err)
	}
}

func buildConfig() contypes.Config {
	cfg := contypes.DefaultConfig()
	cfg.Prompt = "conshell> "
	cfg.ContinuationPrompt = "       * "
	cfg.HistoryFile = historyFile
	cfg.TestMode = testMode
	cfg.Color = !noColor && termenv.EnvColorProfile() != termenv.Ascii
	return cfg
}

func newRegistry() (*command.Registry, error) {
	reg := command.NewRegistry()
	if err := builtin.RegisterAll(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func runShell(_ *cobra.Command, _ []string) {
	logger.Info("starting conshell", "version", version)

	cfg := buildConfig()
	reg, err := newRegistry()
	if err != nil {
		logger.Fatal("failed to register commands", "error", err)
	}

	reader, err := console.NewTerminalReader(cfg.Prompt)
	if err != nil {
		logger.Fatal("failed to open terminal", "error", err)
	}
	defer func() { _ = reader.Close() }()

	sess, err := console.New(newEchoEvaluator(),
		console.WithConfig(cfg),
		console.WithRegistry(reg),
		console.WithReader(reader),
	)
	if err != nil {
		logger.Fatal("failed to create session", "error", err)
	}

	if err := sess.History().Load(); err != nil {
		logger.Warn("history load failed", "error", err)
	}

	fmt.Printf("conshell v%s - type 'help' for commands, 'exit' to quit.\n", version)

	value, err := sess.Run(context.Background())
	switch {
	case errors.Is(err, console.ErrInputExhausted):
		logger.Fatal("input exhausted", "error", err)
	case err != nil:
		// a deliberate raise-up from inside the session
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	case value != "":
		fmt.Println(value)
	}
}

func runBatch(_ *cobra.Command, args []string) {
	scriptPath := args[0]
	logger.Info("starting conshell batch", "script", scriptPath)

	f, err := os.Open(scriptPath)
	if err != nil {
		logger.Fatal("could not open script", "path", scriptPath, "error", err)
	}
	defer func() { _ = f.Close() }()

	cfg := buildConfig()
	cfg.NoHistory = true

	reg, err := newRegistry()
	if err != nil {
		logger.Fatal("failed to register commands", "error", err)
	}

	sess, err := console.New(newEchoEvaluator(),
		console.WithConfig(cfg),
		console.WithRegistry(reg),
		console.WithReader(console.NewBufferReader(f, os.Stdout, scriptPath)),
	)
	if err != nil {
		logger.Fatal("failed to create session", "error", err)
	}

	if _, err := sess.Run(context.Background()); err != nil {
		logger.Fatal("script failed", "script", scriptPath, "error", err)
	}
}
