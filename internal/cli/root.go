package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigdatawirtz/semanticsearch/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	docGlobs []string
)

var rootCmd = &cobra.Command{
	Use:   "semsearch",
	Short: "Semantic search over JSON documents with grounded answers",
	Long: `semsearch loads JSON documents into an in-memory semantic index, finds the
single best matching document for a question, and can ask a local language
model to answer the question from that document alone.

Documents live only for the lifetime of the process.

Example usage:
  semsearch search -q "alpha topic"            # Best matching document
  semsearch ask -q "what is the alpha topic?"  # Grounded answer
  semsearch shell --docs 'data/**/*.json'      # Interactive session`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semsearch.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringSliceVar(&docGlobs, "docs", nil, "document glob patterns to load (default from config)")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetRootDir returns the resolved root directory.
func GetRootDir() string {
	return rootDir
}
