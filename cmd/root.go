// =============================================================================
// Supplier Follow-up Mailer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (pomailer)
//   ├── sendCmd     (pomailer send)
//   ├── validateCmd (pomailer validate)
//   ├── previewCmd  (pomailer preview)
//   └── versionCmd  (pomailer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading config.yaml, .env and the environment
//   3. Building the structured logger
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and logger are set by the root PersistentPreRunE.
var (
	appConfig *config.Config
	logger    = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "pomailer",
	Short: "Supplier Follow-up Mailer - Email suppliers their pending purchase orders",
	Long: `Supplier Follow-up Mailer reads a purchase-order spreadsheet, groups the
pending line items by supplier, and sends each supplier one email with an HTML
table of their open orders.

Key Features:
  - XLSX and CSV input
  - Required-column validation before anything is sent
  - Per-supplier CC aggregation from an optional CC column
  - File, SMTP, Resend and Postmark transports
  - Dry runs, HTML previews and a summary log per run

Example Usage:
  pomailer validate --file orders.xlsx       # Check the spreadsheet
  pomailer preview --file orders.xlsx        # Show who would get what
  pomailer send --file orders.xlsx --dry-run # Compose without sending
  pomailer send --file orders.xlsx           # Send the follow-up emails`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initialize()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context; a send in progress stops before the next supplier.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// initialize loads the configuration and builds the logger.
func initialize() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	l, err := logging.New(logging.Config{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	appConfig = cfg
	logger = l
	logger.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.String("transport", cfg.Transport.Provider),
	)
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
