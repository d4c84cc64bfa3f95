package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/oncoviz/tcga-explore/internal/barcode"
	"github.com/oncoviz/tcga-explore/internal/maf"
)

// callKey is the composite key for deduplicating mutation calls before writing.
type callKey struct {
	gene, bc, chrom, proteinChange string
	pos                            int64
}

// WriteMutations batch-inserts mutation calls into DuckDB using the
// Appender API. The patient identifier is derived from each call's
// barcode at write time; a malformed barcode aborts the whole write.
// Duplicate (gene, barcode, chromosome, start_position, protein_change)
// entries are deduplicated before writing.
func (s *Store) WriteMutations(calls []maf.MutationCall) error {
	if len(calls) == 0 {
		return nil
	}

	// Deduplicate by primary key (same call from overlapping MAF files)
	seen := make(map[callKey]bool, len(calls))
	deduped := make([]maf.MutationCall, 0, len(calls))
	for _, m := range calls {
		k := callKey{m.Gene, m.Barcode, m.Chromosome, m.ProteinChange, m.StartPosition}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, m)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "mutation_calls")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, m := range deduped {
		pid, err := barcode.ExtractPatientID(m.Barcode)
		if err != nil {
			return fmt.Errorf("mutation call for %s: %w", m.Gene, err)
		}
		if err := appender.AppendRow(
			m.Gene, m.Barcode, pid,
			m.Classification, m.VariantType, m.ProteinChange,
			m.Chromosome, m.StartPosition,
		); err != nil {
			return fmt.Errorf("append mutation call: %w", err)
		}
	}

	return appender.Flush()
}

// ClearMutations removes all cached mutation calls.
func (s *Store) ClearMutations() error {
	_, err := s.db.Exec("DELETE FROM mutation_calls")
	return err
}

// MutatedPatients returns the distinct patient identifiers with at
// least one cached call in the given gene.
func (s *Store) MutatedPatients(gene string) (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT DISTINCT patient_id FROM mutation_calls WHERE gene=?", gene)
	if err != nil {
		return nil, fmt.Errorf("query mutated patients: %w", err)
	}
	defer rows.Close()

	patients := make(map[string]struct{})
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients[pid] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return patients, nil
}

// PatientCount returns the number of distinct patients with at least
// one cached call in any gene.
func (s *Store) PatientCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT patient_id) FROM mutation_calls").Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}

// GeneCount is a per-gene count of distinct mutated patients.
type GeneCount struct {
	Gene     string
	Patients int
}

// GeneCounts returns per-gene distinct-patient counts, most mutated
// first, ties broken by gene name. With nonSilentOnly set, calls whose
// classification does not alter the protein product are excluded.
func (s *Store) GeneCounts(nonSilentOnly bool) ([]GeneCount, error) {
	query := `SELECT gene, COUNT(DISTINCT patient_id) AS n
		FROM mutation_calls`
	if nonSilentOnly {
		query += ` WHERE classification NOT IN
			('Silent','Intron','3''UTR','5''UTR','3''Flank','5''Flank','IGR','RNA','Targeted_Region')`
	}
	query += ` GROUP BY gene ORDER BY n DESC, gene ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query gene counts: %w", err)
	}
	defer rows.Close()

	var counts []GeneCount
	for rows.Next() {
		var gc GeneCount
		if err := rows.Scan(&gc.Gene, &gc.Patients); err != nil {
			return nil, fmt.Errorf("scan gene count: %w", err)
		}
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene counts: %w", err)
	}
	return counts, nil
}

// SearchByGene returns all cached calls for a gene.
func (s *Store) SearchByGene(gene string) ([]maf.MutationCall, error) {
	rows, err := s.db.Query(`SELECT
		gene, barcode, classification, variant_type, protein_change,
		chromosome, start_position
		FROM mutation_calls
		WHERE gene=?`, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	var calls []maf.MutationCall
	for rows.Next() {
		var m maf.MutationCall
		if err := rows.Scan(
			&m.Gene, &m.Barcode, &m.Classification, &m.VariantType,
			&m.ProteinChange, &m.Chromosome, &m.StartPosition,
		); err != nil {
			return nil, fmt.Errorf("scan mutation call: %w", err)
		}
		calls = append(calls, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutation calls: %w", err)
	}
	return calls, nil
}
