package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oncoviz/tcga-explore/internal/duckdb"
	"github.com/oncoviz/tcga-explore/internal/maf"
	"github.com/oncoviz/tcga-explore/internal/output"
)

func newSummaryCmd() *cobra.Command {
	var (
		dbPath     string
		top        int
		nonSilent  bool
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "summary [maf-file]",
		Short: "Rank genes by mutated-patient count",
		Long: `Summarize somatic mutation calls into a ranked table of genes by the
number of distinct patients carrying at least one call, the tabular
equivalent of an oncoplot's gene sidebar.

Calls come either from a MAF file argument or from a DuckDB store
previously built with 'ingest' (--db).`,
		Example: `  tcga-explore summary mutations.maf.gz
  tcga-explore summary --top 20 --nonsilent mutations.maf
  tcga-explore summary --db mutations.duckdb`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mafPath := ""
			if len(args) == 1 {
				mafPath = args[0]
			}
			if (mafPath == "") == (dbPath == "") {
				return fmt.Errorf("exactly one of a MAF file argument and --db required")
			}
			return runSummary(mafPath, dbPath, top, nonSilent, outputFile)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB store built by 'ingest'")
	cmd.Flags().IntVar(&top, "top", 25, "Number of genes to report (0 = all)")
	cmd.Flags().BoolVar(&nonSilent, "nonsilent", false, "Count only protein-altering calls")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runSummary(mafPath, dbPath string, top int, nonSilent bool, outputFile string) error {
	var store *duckdb.Store
	if dbPath != "" {
		s, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		store = s
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

		// An in-memory store keeps the ranking queryable SQL, without
		// leaving a database file behind.
		s, err := duckdb.Open("")
		if err != nil {
			return err
		}
		if err := s.WriteMutations(calls); err != nil {
			s.Close()
			return err
		}
		store = s
	}
	defer store.Close()

	counts, err := store.GeneCounts(nonSilent)
	if err != nil {
		return err
	}
	if top > 0 && top < len(counts) {
		counts = counts[:top]
	}

	// Cohort size for the frequency column: distinct patients across
	// all calls, regardless of gene.
	totalPatients, err := store.PatientCount()
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	sw := output.NewSummaryWriter(out)
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	for _, gc := range counts {
		if err := sw.Write(gc, totalPatients); err != nil {
			return err
		}
	}
	return sw.Flush()
}
