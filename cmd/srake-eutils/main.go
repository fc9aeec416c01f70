package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nishad/srake-eutils/internal/config"
	"github.com/nishad/srake-eutils/internal/eutils"
	"github.com/spf13/cobra"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	configPath string
	noColor    bool
	quiet      bool
	debug      bool
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

// Root command
var rootCmd = &cobra.Command{
	Use:   "srake-eutils",
	Short: "FASTA and SRA run lookups over NCBI E-utilities",
	Long: `srake-eutils resolves sequence accessions to FASTA records and search terms
to Sequence Read Archive runs using the NCBI E-utilities web service.

Each lookup is a search call followed by a fetch or summary call for the
identifiers found. FASTA records are streamed line by line as they arrive.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Fetch the sequence of GRCh37 chromosome 8
  srake-eutils fasta CM000670.1

  # List the runs of a BioProject
  srake-eutils runs PRJNA257197

  # Serve both lookups over HTTP
  srake-eutils serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	// Without a verb there is nothing to do
	Run: func(cmd *cobra.Command, args []string) {},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $SRAKE_EUTILS_CONFIG or XDG config dir)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(fastaCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func loadConfig() error {
	path := configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded
	printDebug("Using config %s", path)
	return nil
}

// newClient builds an eutils client whose diagnostics go to diag
func newClient(diag io.Writer) *eutils.Client {
	return eutils.NewClient(cfg.Eutils, eutils.WithDiagnostics(log.New(diag, "", 0)))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
