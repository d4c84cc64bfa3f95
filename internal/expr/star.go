package expr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// starUnstrandedCol is the unstranded count column in GDC STAR gene
// counts files (gene_id, gene_name, gene_type, unstranded, ...).
const starUnstrandedCol = 3

// LoadSTARCounts reads a GDC STAR gene counts TSV for one sample and
// returns gene ID to unstranded count. Comment lines, the header row,
// and the N_unmapped/N_multimapping/N_noFeature/N_ambiguous summary
// rows are skipped.
func LoadSTARCounts(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open STAR counts: %w", err)
	}
	defer f.Close()

	return ReadSTARCounts(f)
}

// ReadSTARCounts reads STAR gene counts from an io.Reader.
func ReadSTARCounts(r io.Reader) (map[string]float64, error) {
	counts := make(map[string]float64)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		gene := fields[0]
		if gene == "gene_id" || strings.HasPrefix(gene, "N_") {
			continue
		}
		if len(fields) <= starUnstrandedCol {
			return nil, fmt.Errorf("STAR counts line %d: expected at least %d columns, found %d",
				line, starUnstrandedCol+1, len(fields))
		}
		v, err := strconv.ParseFloat(fields[starUnstrandedCol], 64)
		if err != nil {
			return nil, fmt.Errorf("STAR counts line %d: invalid count %q", line, fields[starUnstrandedCol])
		}
		counts[gene] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading STAR counts: %w", err)
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("STAR counts: no gene rows found")
	}

	return counts, nil
}
