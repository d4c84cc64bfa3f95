// Package expr loads and normalizes gene-expression count matrices.
package expr

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// Matrix is a genes-by-samples expression matrix. Counts[g][s] holds
// the value for gene Genes[g] in sample Samples[s].
type Matrix struct {
	Genes   []string
	Samples []string
	Counts  [][]float64
}

// LoadMatrix reads a tab-delimited expression matrix: a header row of
// sample identifiers (first cell is the gene-column label) followed by
// one row per gene. Gzipped files are detected by the .gz suffix.
func LoadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open expression matrix: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip matrix: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return ReadMatrix(r)
}

// ReadMatrix reads an expression matrix from an io.Reader.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read matrix header: %w", err)
		}
		return nil, fmt.Errorf("expression matrix: empty file")
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 2 {
		return nil, fmt.Errorf("expression matrix: header has no sample columns")
	}

	m := &Matrix{Samples: header[1:]}

	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("expression matrix line %d: expected %d columns, found %d",
				line, len(header), len(fields))
		}

		row := make([]float64, len(fields)-1)
		for i, cell := range fields[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("expression matrix line %d: invalid count %q", line, cell)
			}
			row[i] = v
		}
		m.Genes = append(m.Genes, fields[0])
		m.Counts = append(m.Counts, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading expression matrix: %w", err)
	}

	return m, nil
}

// CombineSamples builds a matrix from per-sample count maps (e.g. one
// STAR counts file per sample). Genes are the union across samples,
// sorted; missing values are zero.
func CombineSamples(counts map[string]map[string]float64) *Matrix {
	geneSet := make(map[string]struct{})
	samples := make([]string, 0, len(counts))
	for s, genes := range counts {
		samples = append(samples, s)
		for g := range genes {
			geneSet[g] = struct{}{}
		}
	}
	sort.Strings(samples)

	genes := make([]string, 0, len(geneSet))
	for g := range geneSet {
		genes = append(genes, g)
	}
	sort.Strings(genes)

	m := &Matrix{
		Genes:   genes,
		Samples: samples,
		Counts:  make([][]float64, len(genes)),
	}
	for gi, g := range genes {
		row := make([]float64, len(samples))
		for si, s := range samples {
			row[si] = counts[s][g]
		}
		m.Counts[gi] = row
	}

	return m
}

// Log2CPM transforms raw counts to log2 counts-per-million with a
// pseudocount of 1, a simple variance-stabilizing transform for
// exploratory clustering. Returns a new matrix; the receiver is
// unchanged. Samples with zero total counts are rejected.
func (m *Matrix) Log2CPM() (*Matrix, error) {
	totals := make([]float64, len(m.Samples))
	for _, row := range m.Counts {
		for s, v := range row {
			totals[s] += v
		}
	}
	for s, total := range totals {
		if total == 0 {
			return nil, fmt.Errorf("sample %s has zero total counts", m.Samples[s])
		}
	}

	out := &Matrix{
		Genes:   append([]string(nil), m.Genes...),
		Samples: append([]string(nil), m.Samples...),
		Counts:  make([][]float64, len(m.Counts)),
	}
	for g, row := range m.Counts {
		norm := make([]float64, len(row))
		for s, v := range row {
			norm[s] = math.Log2(v/totals[s]*1e6 + 1)
		}
		out.Counts[g] = norm
	}

	return out, nil
}

// GeneVariance holds a gene with its across-sample variance.
type GeneVariance struct {
	Gene     string
	Variance float64
}

// TopVariableGenes returns the n genes with the highest across-sample
// variance, most variable first. Ties break by gene name for stable
// output. If n exceeds the gene count, all genes are returned.
func (m *Matrix) TopVariableGenes(n int) ([]GeneVariance, error) {
	ranked := make([]GeneVariance, 0, len(m.Genes))
	for g, row := range m.Counts {
		v, err := stats.Variance(stats.Float64Data(row))
		if err != nil {
			return nil, fmt.Errorf("variance for gene %s: %w", m.Genes[g], err)
		}
		ranked = append(ranked, GeneVariance{Gene: m.Genes[g], Variance: v})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Variance != ranked[j].Variance {
			return ranked[i].Variance > ranked[j].Variance
		}
		return ranked[i].Gene < ranked[j].Gene
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Subset returns a new matrix restricted to the given genes and
// samples, in the given order. Unknown names are errors.
// WriteTSV writes the matrix in the same layout ReadMatrix accepts: a
// gene_id header row of sample identifiers, then one row per gene.
func (m *Matrix) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("gene_id\t" + strings.Join(m.Samples, "\t") + "\n"); err != nil {
		return err
	}
	for gi, g := range m.Genes {
		row := make([]string, 0, len(m.Samples)+1)
		row = append(row, g)
		for _, v := range m.Counts[gi] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func (m *Matrix) Subset(genes, samples []string) (*Matrix, error) {
	geneIdx := make(map[string]int, len(m.Genes))
	for i, g := range m.Genes {
		geneIdx[g] = i
	}
	sampleIdx := make(map[string]int, len(m.Samples))
	for i, s := range m.Samples {
		sampleIdx[s] = i
	}

	out := &Matrix{
		Genes:   append([]string(nil), genes...),
		Samples: append([]string(nil), samples...),
		Counts:  make([][]float64, len(genes)),
	}
	for i, g := range genes {
		gi, ok := geneIdx[g]
		if !ok {
			return nil, fmt.Errorf("gene %s not in matrix", g)
		}
		row := make([]float64, len(samples))
		for j, s := range samples {
			si, ok := sampleIdx[s]
			if !ok {
				return nil, fmt.Errorf("sample %s not in matrix", s)
			}
			row[j] = m.Counts[gi][si]
		}
		out.Counts[i] = row
	}

	return out, nil
}
