package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oncoviz/tcga-explore/internal/annotate"
	"github.com/oncoviz/tcga-explore/internal/clinical"
	"github.com/oncoviz/tcga-explore/internal/duckdb"
	"github.com/oncoviz/tcga-explore/internal/maf"
	"github.com/oncoviz/tcga-explore/internal/output"
)

func newAnnotateCmd() *cobra.Command {
	var (
		mafPath    string
		dbPath     string
		genesArg   string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "annotate <sample-sheet>",
		Short: "Annotate samples with per-gene mutation status",
		Long: `Join a sample sheet against somatic mutation calls on the patient
identifier derived from each barcode, and emit one TRUE/FALSE column
per queried gene. Gene symbols match the MAF exactly (case-sensitive).

Calls come either from a MAF file (--maf) or from a DuckDB store
previously built with 'ingest' (--db), which skips re-parsing the MAF.`,
		Example: `  tcga-explore annotate --maf mutations.maf --genes IDH1 samples.tsv
  tcga-explore annotate --maf mutations.maf.gz --genes IDH1,TP53,ATRX -o annotations.tsv samples.tsv
  tcga-explore annotate --db mutations.duckdb --genes IDH1,TP53 samples.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genes := splitGenes(genesArg)
			if len(genes) == 0 {
				return fmt.Errorf("at least one gene required (--genes)")
			}
			if (mafPath == "") == (dbPath == "") {
				return fmt.Errorf("exactly one of --maf and --db required")
			}
			return runAnnotate(args[0], mafPath, dbPath, genes, outputFile)
		},
	}

	cmd.Flags().StringVar(&mafPath, "maf", "", "MAF file with somatic mutation calls")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB store built by 'ingest'")
	cmd.Flags().StringVar(&genesArg, "genes", "", "Comma-separated gene symbols to annotate (required)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("genes")

	return cmd
}

// splitGenes parses a comma-separated gene list, dropping empty entries.
func splitGenes(arg string) []string {
	var genes []string
	for _, g := range strings.Split(arg, ",") {
		g = strings.TrimSpace(g)
		if g != "" {
			genes = append(genes, g)
		}
	}
	return genes
}

func runAnnotate(sheetPath, mafPath, dbPath string, genes []string, outputFile string) error {
	samples, err := clinical.LoadSampleSheet(sheetPath)
	if err != nil {
		return err
	}
	logger.Info("loaded sample sheet",
		zap.String("path", sheetPath),
		zap.Int("samples", len(samples)))

	var table *annotate.Table
	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		logger.Info("annotating from ingested store", zap.String("db", dbPath))
		table, err = annotate.BuildTableFromSource(samples, store.MutatedPatients, genes, viper.GetInt("workers"))
		if err != nil {
			return err
		}
	} else {
		parser, err := maf.NewParser(mafPath)
		if err != nil {
			return err
		}
		calls, err := parser.ReadAll()
		parser.Close()
		if err != nil {
			return err
		}
		logger.Info("loaded mutation calls",
			zap.String("path", mafPath),
			zap.Int("calls", len(calls)))

		table, err = annotate.BuildTable(samples, calls, genes, viper.GetInt("workers"))
		if err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	return output.NewAnnotationWriter(out).WriteTable(samples, table)
}
