package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oncoviz/tcga-explore/internal/clinical"
	"github.com/oncoviz/tcga-explore/internal/cohort"
	"github.com/oncoviz/tcga-explore/internal/duckdb"
	"github.com/oncoviz/tcga-explore/internal/expr"
	"github.com/oncoviz/tcga-explore/internal/maf"
	"github.com/oncoviz/tcga-explore/internal/output"
)

// clinicalMetaColumns are the sample-metadata keys the cohort builder
// fills in from clinical records, in output column order.
var clinicalMetaColumns = []string{"primary_diagnosis", "tumor_grade", "vital_status"}

func newHeatmapCmd() *cobra.Command {
	var (
		countsPath     string
		mafPath        string
		dbPath         string
		clinicalPath   string
		genesArg       string
		topN           int
		allSamples     bool
		outMatrix      string
		outAnnotations string
	)

	cmd := &cobra.Command{
		Use:   "heatmap <sample-sheet>",
		Short: "Prepare heatmap-ready matrix and annotation files",
		Long: `Assemble a cohort for heatmap plotting: restrict to samples present in
both the count matrix and the sample sheet (tumor samples only unless
--all-samples), normalize counts to log2-CPM, keep the most variable
genes, and annotate every sample with per-gene mutation status.

Mutation calls come either from a MAF file (--maf) or from a DuckDB
store previously built with 'ingest' (--db). With --clinical, patient
diagnosis, grade, and vital status are joined into the annotations.`,
		Example: `  tcga-explore heatmap --counts counts.tsv --maf mutations.maf.gz --genes IDH1,TP53 samples.tsv
  tcga-explore heatmap --counts counts.tsv --db mutations.duckdb --genes IDH1 --clinical clinical.tsv --top 100 samples.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genes := splitGenes(genesArg)
			if len(genes) == 0 {
				return fmt.Errorf("at least one gene required (--genes)")
			}
			if (mafPath == "") == (dbPath == "") {
				return fmt.Errorf("exactly one of --maf and --db required")
			}
			return runHeatmap(args[0], countsPath, mafPath, dbPath, clinicalPath,
				genes, topN, allSamples, outMatrix, outAnnotations)
		},
	}

	cmd.Flags().StringVar(&countsPath, "counts", "", "Expression count matrix TSV (required)")
	cmd.Flags().StringVar(&mafPath, "maf", "", "MAF file with somatic mutation calls")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB store built by 'ingest'")
	cmd.Flags().StringVar(&clinicalPath, "clinical", "", "GDC clinical.tsv to join patient fields from")
	cmd.Flags().StringVar(&genesArg, "genes", "", "Comma-separated gene symbols to annotate (required)")
	cmd.Flags().IntVar(&topN, "top", 50, "Number of most variable genes to keep")
	cmd.Flags().BoolVar(&allSamples, "all-samples", false, "Keep non-tumor samples in the cohort")
	cmd.Flags().StringVar(&outMatrix, "out-matrix", "heatmap_matrix.tsv", "Output path for the normalized matrix")
	cmd.Flags().StringVar(&outAnnotations, "out-annotations", "heatmap_annotations.tsv", "Output path for the annotation table")
	cmd.MarkFlagRequired("counts")
	cmd.MarkFlagRequired("genes")

	return cmd
}

func runHeatmap(sheetPath, countsPath, mafPath, dbPath, clinicalPath string, genes []string, topN int, allSamples bool, outMatrix, outAnnotations string) error {
	samples, err := clinical.LoadSampleSheet(sheetPath)
	if err != nil {
		return err
	}
	m, err := expr.LoadMatrix(countsPath)
	if err != nil {
		return err
	}
	logger.Info("loaded inputs",
		zap.Int("samples", len(samples)),
		zap.Int("genes_in_matrix", len(m.Genes)))

	calls, err := loadCalls(mafPath, dbPath, genes)
	if err != nil {
		return err
	}

	b := cohort.NewBuilder()
	b.SetLogger(logger)
	b.SetWorkers(viper.GetInt("workers"))
	if clinicalPath != "" {
		patients, err := clinical.LoadPatients(clinicalPath)
		if err != nil {
			return err
		}
		logger.Info("loaded clinical records",
			zap.String("path", clinicalPath),
			zap.Int("patients", len(patients)))
		b.SetClinical(patients)
	}

	data, err := b.Build(m, samples, calls, genes, topN, !allSamples)
	if err != nil {
		return err
	}

	mf, err := os.Create(outMatrix)
	if err != nil {
		return fmt.Errorf("create matrix output: %w", err)
	}
	defer mf.Close()
	if err := data.Matrix.WriteTSV(mf); err != nil {
		return err
	}

	af, err := os.Create(outAnnotations)
	if err != nil {
		return fmt.Errorf("create annotation output: %w", err)
	}
	defer af.Close()

	aw := output.NewAnnotationWriter(af)
	if clinicalPath != "" {
		aw.SetMetaColumns(clinicalMetaColumns)
	}
	if err := aw.WriteTable(data.Samples, data.Annotations); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d genes x %d samples) and %s\n",
		outMatrix, len(data.Matrix.Genes), len(data.Matrix.Samples), outAnnotations)
	return nil
}

// loadCalls reads mutation calls from a MAF file, or pulls the queried
// genes' calls out of an ingested DuckDB store.
func loadCalls(mafPath, dbPath string, genes []string) ([]maf.MutationCall, error) {
	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		var calls []maf.MutationCall
		for _, g := range genes {
			gc, err := store.SearchByGene(g)
			if err != nil {
				return nil, err
			}
			calls = append(calls, gc...)
		}
		return calls, nil
	}

	parser, err := maf.NewParser(mafPath)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	return parser.ReadAll()
}
