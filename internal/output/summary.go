package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/oncoviz/tcga-explore/internal/duckdb"
)

// SummaryWriter writes a ranked per-gene mutation-frequency table, the
// tabular equivalent of an oncoplot's gene sidebar.
type SummaryWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewSummaryWriter creates a new tab-delimited summary writer.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"gene",
			"mutated_patients",
			"frequency",
		},
	}
}

// WriteHeader writes the header line.
func (sw *SummaryWriter) WriteHeader() error {
	_, err := sw.w.WriteString(strings.Join(sw.columns, "\t") + "\n")
	return err
}

// Write writes one gene's count. totalPatients scales the frequency
// column; zero leaves it blank.
func (sw *SummaryWriter) Write(gc duckdb.GeneCount, totalPatients int) error {
	freq := "-"
	if totalPatients > 0 {
		freq = fmt.Sprintf("%.3f", float64(gc.Patients)/float64(totalPatients))
	}
	_, err := fmt.Fprintf(sw.w, "%s\t%d\t%s\n", gc.Gene, gc.Patients, freq)
	return err
}

// Flush flushes buffered output.
func (sw *SummaryWriter) Flush() error {
	return sw.w.Flush()
}
