package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oncoviz/tcga-explore/internal/gdc"
)

func newDownloadCmd() *cobra.Command {
	var (
		project   string
		outputDir string
		category  string
		listOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download cohort data files from the GDC",
		Long: `Download open-access MAF, expression-counts, and clinical files for a
TCGA project from the GDC API into the local data directory.`,
		Example: `  # Download somatic mutation calls for the configured project
  tcga-explore download --category snv

  # Download expression counts for a different cohort
  tcga-explore download --project TCGA-GBM --category expression

  # List matching files without downloading
  tcga-explore download --category snv --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				project = viper.GetString("project")
			}
			if outputDir == "" {
				outputDir = viper.GetString("data_dir")
			}
			return runDownload(project, outputDir, category, listOnly)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "TCGA project ID (default from config)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&category, "category", "snv", "Data category: snv, expression, clinical")
	cmd.Flags().BoolVar(&listOnly, "list", false, "List matching files without downloading")

	return cmd
}

// categoryQuery maps a CLI category name to GDC search parameters.
func categoryQuery(category string) (dataCategory, dataFormat string, err error) {
	switch strings.ToLower(category) {
	case "snv":
		return gdc.CategorySNV, "MAF", nil
	case "expression":
		return gdc.CategoryTranscriptome, "TSV", nil
	case "clinical":
		return gdc.CategoryClinical, "", nil
	default:
		return "", "", fmt.Errorf("unknown data category %q (want snv, expression, or clinical)", category)
	}
}

func runDownload(project, outputDir, category string, listOnly bool) error {
	dataCategory, dataFormat, err := categoryQuery(category)
	if err != nil {
		return err
	}

	client := gdc.NewClient("")
	client.SetLogger(logger)

	logger.Info("searching GDC",
		zap.String("project", project),
		zap.String("category", dataCategory))

	files, err := client.SearchFiles(project, dataCategory, dataFormat)
	if err != nil {
		return fmt.Errorf("search GDC files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no open-access %s files found for %s", category, project)
	}

	fmt.Printf("Found %d %s files for %s\n", len(files), category, project)

	if listOnly {
		for _, f := range files {
			fmt.Printf("  %s\t%s\n", f.ID, f.FileName)
		}
		return nil
	}

	destDir := filepath.Join(outputDir, strings.ToLower(project), strings.ToLower(category))
	fmt.Printf("Destination: %s\n", destDir)

	for _, f := range files {
		if err := client.DownloadFile(f.ID, filepath.Join(destDir, f.FileName)); err != nil {
			return fmt.Errorf("download %s: %w", f.FileName, err)
		}
	}

	fmt.Printf("Download complete: %d files\n", len(files))
	return nil
}
