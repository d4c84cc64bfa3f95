// Package annotate derives per-sample mutation-status annotations by
// joining expression-sample metadata against somatic mutation calls on
// a shared patient identifier.
package annotate

import (
	"errors"
	"fmt"

	"github.com/oncoviz/tcga-explore/internal/barcode"
	"github.com/oncoviz/tcga-explore/internal/maf"
)

// ErrEmptyInput indicates that no sample records were supplied.
var ErrEmptyInput = errors.New("annotate: empty sample set")

// SampleRecord is one row of expression/clinical metadata for a single
// biological sample. Meta carries pass-through columns the join does
// not interpret.
type SampleRecord struct {
	ID      string
	Barcode string
	Meta    map[string]string
}

// MutatedPatients returns the set of patient identifiers with at least
// one mutation call in the given gene. Gene matching is exact and
// case-sensitive. A call whose barcode cannot be parsed aborts the
// whole computation.
func MutatedPatients(calls []maf.MutationCall, gene string) (map[string]struct{}, error) {
	patients := make(map[string]struct{})
	for i := range calls {
		if calls[i].Gene != gene {
			continue
		}
		pid, err := barcode.ExtractPatientID(calls[i].Barcode)
		if err != nil {
			return nil, fmt.Errorf("mutation call for %s: %w", gene, err)
		}
		patients[pid] = struct{}{}
	}
	return patients, nil
}

// GenePresence maps every sample identifier to whether the sample's
// patient carries at least one mutation call in the given gene.
//
// The join is sample-preserving: the result has exactly one entry per
// input sample, and a patient-level match is broadcast to all of that
// patient's samples. An empty or gene-mismatched call set yields an
// all-false result. Any malformed barcode, on either side of the join,
// aborts with no partial result.
func GenePresence(samples []SampleRecord, calls []maf.MutationCall, gene string) (map[string]bool, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	mutated, err := MutatedPatients(calls, gene)
	if err != nil {
		return nil, err
	}

	return Broadcast(samples, mutated)
}

// Broadcast maps every sample identifier to whether its patient is in
// the mutated set. All sample barcodes are validated before anything is
// emitted, so a malformed record can never leave a partially built
// result in use.
func Broadcast(samples []SampleRecord, mutated map[string]struct{}) (map[string]bool, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	presence := make(map[string]bool, len(samples))
	for i := range samples {
		pid, err := barcode.ExtractPatientID(samples[i].Barcode)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", samples[i].ID, err)
		}
		_, hit := mutated[pid]
		presence[samples[i].ID] = hit
	}

	return presence, nil
}
