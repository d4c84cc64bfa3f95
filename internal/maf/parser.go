// Package maf provides MAF (Mutation Annotation Format) file parsing
// for TCGA somatic mutation calls.
package maf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Standard MAF column names
const (
	ColHugoSymbol            = "Hugo_Symbol"
	ColTumorSampleBarcode    = "Tumor_Sample_Barcode"
	ColVariantClassification = "Variant_Classification"
	ColVariantType           = "Variant_Type"
	ColHGVSpShort            = "HGVSp_Short"
	ColChromosome            = "Chromosome"
	ColStartPosition         = "Start_Position"
)

// ColumnIndices holds the indices of important MAF columns.
type ColumnIndices struct {
	HugoSymbol            int
	TumorSampleBarcode    int
	VariantClassification int
	VariantType           int
	HGVSpShort            int
	Chromosome            int
	StartPosition         int
}

// MutationCall is a single somatic mutation call attributed to a gene
// and a tumor sample barcode. Detail fields beyond gene and barcode
// are optional and may be empty depending on the source file.
type MutationCall struct {
	Gene           string
	Barcode        string
	Classification string
	VariantType    string
	ProteinChange  string
	Chromosome     string
	StartPosition  int64
}

// silentClassifications are variant classifications that do not alter
// the protein product, per the cBioPortal/maftools convention.
var silentClassifications = map[string]bool{
	"Silent":          true,
	"Intron":          true,
	"3'UTR":           true,
	"5'UTR":           true,
	"3'Flank":         true,
	"5'Flank":         true,
	"IGR":             true,
	"RNA":             true,
	"Targeted_Region": true,
}

// IsNonSilent reports whether the call's variant classification alters
// the protein product. Calls without a classification are treated as
// non-silent.
func (m *MutationCall) IsNonSilent() bool {
	return !silentClassifications[m.Classification]
}

// Parser reads mutation calls from a MAF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
	headerLine string
}

// NewParser creates a new MAF parser for the given file.
// Supports both plain MAF and gzipped MAF (.maf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read maf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek maf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	// Parse header
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and parses the MAF header line to find column indices.
// A header on the final line of a file without a trailing newline is
// still accepted.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read header: %w", err)
		}
		atEOF := err == io.EOF

		line = strings.TrimRight(line, "\r\n")

		// Skip comment lines and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			if atEOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			p.lineNumber++
			continue
		}
		p.lineNumber++

		// This should be the header line
		p.headerLine = line
		if err := p.parseColumnIndices(line); err != nil {
			return err
		}
		return nil
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	columns := strings.Split(headerLine, "\t")

	// Initialize all indices to -1 (not found)
	p.columns = ColumnIndices{
		HugoSymbol:            -1,
		TumorSampleBarcode:    -1,
		VariantClassification: -1,
		VariantType:           -1,
		HGVSpShort:            -1,
		Chromosome:            -1,
		StartPosition:         -1,
	}

	for i, col := range columns {
		switch col {
		case ColHugoSymbol:
			p.columns.HugoSymbol = i
		case ColTumorSampleBarcode:
			p.columns.TumorSampleBarcode = i
		case ColVariantClassification:
			p.columns.VariantClassification = i
		case ColVariantType:
			p.columns.VariantType = i
		case ColHGVSpShort:
			p.columns.HGVSpShort = i
		case ColChromosome:
			p.columns.Chromosome = i
		case ColStartPosition:
			p.columns.StartPosition = i
		}
	}

	// Validate required columns
	if p.columns.HugoSymbol == -1 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: "required column 'Hugo_Symbol' not found in header",
		}
	}
	if p.columns.TumorSampleBarcode == -1 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: "required column 'Tumor_Sample_Barcode' not found in header",
		}
	}

	return nil
}

// Next reads the next mutation call from the MAF file.
// Returns nil, nil when there are no more calls. A final data line
// without a trailing newline is parsed like any other.
func (p *Parser) Next() (*MutationCall, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read mutation line: %w", err)
		}
		atEOF := err == io.EOF

		line = strings.TrimRight(line, "\r\n")

		// Skip empty lines and comment lines
		if line == "" || strings.HasPrefix(line, "#") {
			if atEOF {
				return nil, nil
			}
			p.lineNumber++
			continue
		}
		p.lineNumber++

		return p.parseLine(line)
	}
}

// ReadAll reads every remaining mutation call from the file.
func (p *Parser) ReadAll() ([]MutationCall, error) {
	var calls []MutationCall
	for {
		m, err := p.Next()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return calls, nil
		}
		calls = append(calls, *m)
	}
}

// parseLine parses a single MAF data line into a MutationCall.
func (p *Parser) parseLine(line string) (*MutationCall, error) {
	fields := strings.Split(line, "\t")

	// Ensure we have enough columns
	minCols := max(p.columns.HugoSymbol, p.columns.TumorSampleBarcode)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	m := &MutationCall{
		Gene:    fields[p.columns.HugoSymbol],
		Barcode: fields[p.columns.TumorSampleBarcode],
	}

	if m.Gene == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "empty Hugo_Symbol",
		}
	}
	if m.Barcode == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "empty Tumor_Sample_Barcode",
		}
	}

	// Optional detail columns
	if p.columns.VariantClassification >= 0 && p.columns.VariantClassification < len(fields) {
		m.Classification = fields[p.columns.VariantClassification]
	}
	if p.columns.VariantType >= 0 && p.columns.VariantType < len(fields) {
		m.VariantType = fields[p.columns.VariantType]
	}
	if p.columns.HGVSpShort >= 0 && p.columns.HGVSpShort < len(fields) {
		m.ProteinChange = fields[p.columns.HGVSpShort]
	}
	if p.columns.Chromosome >= 0 && p.columns.Chromosome < len(fields) {
		m.Chromosome = fields[p.columns.Chromosome]
	}
	if p.columns.StartPosition >= 0 && p.columns.StartPosition < len(fields) {
		pos, err := strconv.ParseInt(fields[p.columns.StartPosition], 10, 64)
		if err != nil {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("invalid position: %s", fields[p.columns.StartPosition]),
			}
		}
		m.StartPosition = pos
	}

	return m, nil
}

// Header returns the MAF header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}

// max returns the maximum of the provided integers.
func max(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
