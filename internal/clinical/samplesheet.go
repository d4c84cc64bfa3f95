// Package clinical loads expression-sample metadata and clinical
// patient tables exported from the GDC portal.
package clinical

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oncoviz/tcga-explore/internal/annotate"
)

// Sample sheet column names. The sheet may carry hundreds of other
// columns; those are preserved verbatim in SampleRecord.Meta.
const (
	ColSampleID = "Sample ID"
	ColBarcode  = "Sample Barcode"
)

// LoadSampleSheet reads a tab-delimited GDC sample sheet and returns
// one SampleRecord per row. "Sample ID" and "Sample Barcode" columns
// are required; all other columns pass through untouched into Meta.
func LoadSampleSheet(path string) ([]annotate.SampleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample sheet: %w", err)
	}
	defer f.Close()

	return ReadSampleSheet(f)
}

// ReadSampleSheet reads a sample sheet from an io.Reader.
func ReadSampleSheet(r io.Reader) ([]annotate.SampleRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read sample sheet header: %w", err)
		}
		return nil, fmt.Errorf("sample sheet: empty file")
	}
	header := strings.Split(scanner.Text(), "\t")

	idIdx := -1
	barcodeIdx := -1
	for i, col := range header {
		switch col {
		case ColSampleID:
			idIdx = i
		case ColBarcode:
			barcodeIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("sample sheet: missing %q column", ColSampleID)
	}
	if barcodeIdx < 0 {
		return nil, fmt.Errorf("sample sheet: missing %q column", ColBarcode)
	}

	var samples []annotate.SampleRecord
	seen := make(map[string]bool)
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) <= idIdx || len(fields) <= barcodeIdx {
			return nil, fmt.Errorf("sample sheet line %d: expected at least %d columns, found %d",
				line, max(idIdx, barcodeIdx)+1, len(fields))
		}

		id := strings.TrimSpace(fields[idIdx])
		if id == "" {
			return nil, fmt.Errorf("sample sheet line %d: empty sample ID", line)
		}
		if seen[id] {
			return nil, fmt.Errorf("sample sheet line %d: duplicate sample ID %q", line, id)
		}
		seen[id] = true

		rec := annotate.SampleRecord{
			ID:      id,
			Barcode: strings.TrimSpace(fields[barcodeIdx]),
			Meta:    make(map[string]string),
		}
		for i, col := range header {
			if i == idIdx || i == barcodeIdx || i >= len(fields) {
				continue
			}
			rec.Meta[col] = fields[i]
		}
		samples = append(samples, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading sample sheet: %w", err)
	}

	return samples, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
