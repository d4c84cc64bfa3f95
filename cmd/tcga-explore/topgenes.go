package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oncoviz/tcga-explore/internal/expr"
)

func newTopGenesCmd() *cobra.Command {
	var (
		top        int
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "topgenes <counts-matrix>",
		Short: "Rank genes by expression variance",
		Long: `Normalize a gene-expression count matrix to log2 counts-per-million
and rank genes by across-sample variance, the gene selection step for
an exploratory clustering heatmap.`,
		Example: `  tcga-explore topgenes counts.tsv
  tcga-explore topgenes --top 500 counts.tsv.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopGenes(args[0], top, outputFile)
		},
	}

	cmd.Flags().IntVar(&top, "top", 50, "Number of genes to report")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runTopGenes(matrixPath string, top int, outputFile string) error {
	m, err := expr.LoadMatrix(matrixPath)
	if err != nil {
		return err
	}

	norm, err := m.Log2CPM()
	if err != nil {
		return err
	}

	ranked, err := norm.TopVariableGenes(top)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	if _, err := fmt.Fprintln(out, "gene\tvariance"); err != nil {
		return err
	}
	for _, gv := range ranked {
		if _, err := fmt.Fprintf(out, "%s\t%.4f\n", gv.Gene, gv.Variance); err != nil {
			return err
		}
	}
	return nil
}
