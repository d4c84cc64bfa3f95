// Package main provides the tcga-explore command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is shared by all subcommands; a no-op until the root command
// runs its PersistentPreRun.
var logger = zap.NewNop()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "tcga-explore",
		Short: "Fetch and explore TCGA cohort data",
		Long: `tcga-explore fetches TCGA expression, clinical, and somatic-mutation
data from the GDC and derives per-sample mutation-status annotations
for heatmap-style visualization.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				logger = l
			}
			return initConfig()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newHeatmapCmd())
	cmd.AddCommand(newTopGenesCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.tcga-explore.yaml if present and sets defaults.
func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	viper.SetDefault("project", "TCGA-LGG")
	viper.SetDefault("data_dir", filepath.Join(home, ".tcga-explore"))
	viper.SetDefault("workers", 0)

	viper.SetConfigFile(filepath.Join(home, ".tcga-explore.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// openOutput returns stdout for an empty path, otherwise creates the file.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
