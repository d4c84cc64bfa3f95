// Package output provides tab-delimited writers for annotation and
// mutation-summary tables.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/oncoviz/tcga-explore/internal/annotate"
	"github.com/oncoviz/tcga-explore/internal/barcode"
)

// AnnotationWriter writes a gene-presence annotation table: one row per
// sample, one TRUE/FALSE column per gene, suitable as a heatmap
// side-panel annotation.
type AnnotationWriter struct {
	w        *bufio.Writer
	metaCols []string
}

// NewAnnotationWriter creates a new tab-delimited annotation writer.
func NewAnnotationWriter(w io.Writer) *AnnotationWriter {
	return &AnnotationWriter{w: bufio.NewWriter(w)}
}

// SetMetaColumns selects sample-metadata keys to emit as extra columns
// between patient_id and the gene columns. A sample missing a key gets
// "-" in that column.
func (aw *AnnotationWriter) SetMetaColumns(keys []string) {
	aw.metaCols = keys
}

// WriteTable writes the full annotation table with a header row of
// sample_id, patient_id, any selected metadata columns, and one column
// per gene.
func (aw *AnnotationWriter) WriteTable(samples []annotate.SampleRecord, table *annotate.Table) error {
	cols := append([]string{"sample_id", "patient_id"}, aw.metaCols...)
	cols = append(cols, table.Genes...)
	if _, err := aw.w.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
		return err
	}

	for si, s := range samples {
		pid, err := barcode.ExtractPatientID(s.Barcode)
		if err != nil {
			return fmt.Errorf("sample %s: %w", s.ID, err)
		}

		row := make([]string, 0, len(cols))
		row = append(row, s.ID, pid)
		for _, key := range aw.metaCols {
			v, ok := s.Meta[key]
			if !ok || v == "" {
				v = "-"
			}
			row = append(row, v)
		}
		for gi := range table.Genes {
			row = append(row, formatBool(table.Presence[gi][si]))
		}
		if _, err := aw.w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}

	return aw.w.Flush()
}

// formatBool renders booleans the way R's data frames expect them.
func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
