package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oncoviz/tcga-explore/internal/duckdb"
	"github.com/oncoviz/tcga-explore/internal/maf"
)

func newIngestCmd() *cobra.Command {
	var (
		dbPath string
		clear  bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <maf-file>...",
		Short: "Load MAF mutation calls into the local DuckDB store",
		Long: `Parse one or more MAF files and load their mutation calls into a
queryable DuckDB database, so gene queries do not re-parse the MAF.`,
		Example: `  tcga-explore ingest mutations.maf.gz
  tcga-explore ingest --db cohort.duckdb part1.maf part2.maf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				project := strings.ToLower(viper.GetString("project"))
				dbPath = filepath.Join(viper.GetString("data_dir"), project, "mutations.duckdb")
			}
			return runIngest(dbPath, args, clear)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default: <data_dir>/<project>/mutations.duckdb)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear previously ingested calls first")

	return cmd
}

func runIngest(dbPath string, mafPaths []string, clear bool) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if clear {
		if err := store.ClearMutations(); err != nil {
			return fmt.Errorf("clear mutation calls: %w", err)
		}
	}

	total := 0
	for _, path := range mafPaths {
		parser, err := maf.NewParser(path)
		if err != nil {
			return err
		}
		logger.Debug("resolved MAF columns",
			zap.String("path", path),
			zap.String("header", parser.Header()))

		calls, err := parser.ReadAll()
		lines := parser.LineNumber()
		parser.Close()
		if err != nil {
			return err
		}

		if err := store.WriteMutations(calls); err != nil {
			return fmt.Errorf("store calls from %s: %w", path, err)
		}

		logger.Info("ingested MAF file",
			zap.String("path", path),
			zap.Int("lines", lines),
			zap.Int("calls", len(calls)))
		total += len(calls)
	}

	fmt.Printf("Ingested %d mutation calls into %s\n", total, dbPath)
	return nil
}
