// Package barcode parses TCGA barcode identifiers.
//
// A TCGA barcode encodes patient, sample, and assay metadata in
// dash-delimited segments, e.g. "TCGA-DU-6397-01A-11R-1708-07".
// The first three segments jointly identify the patient; the fourth
// begins with a two-digit sample type code (01 = primary tumor,
// 02 = recurrent tumor, 10 = blood-derived normal, ...).
package barcode

import (
	"fmt"
	"strings"
)

// PatientSegments is the number of leading barcode segments that
// identify a patient.
const PatientSegments = 3

// MalformedIdentifierError indicates a barcode that does not contain
// the minimum number of dash-delimited segments.
type MalformedIdentifierError struct {
	Barcode string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed barcode %q: expected at least %d dash-delimited segments", e.Barcode, PatientSegments)
}

// ExtractPatientID returns the patient-level identifier of a barcode:
// its first three dash-delimited segments, joined with dashes
// (e.g. "TCGA-DU-6397-01A-11R" -> "TCGA-DU-6397").
//
// Segment contents are not validated beyond their count; barcodes with
// non-canonical segment lengths are accepted as long as three segments
// exist. Fewer than three segments is an error.
func ExtractPatientID(bc string) (string, error) {
	parts := strings.SplitN(bc, "-", PatientSegments+1)
	if len(parts) < PatientSegments {
		return "", &MalformedIdentifierError{Barcode: bc}
	}
	for _, p := range parts[:PatientSegments] {
		if p == "" {
			return "", &MalformedIdentifierError{Barcode: bc}
		}
	}
	return strings.Join(parts[:PatientSegments], "-"), nil
}

// SampleTypeCode returns the two-digit sample type code from the
// fourth barcode segment (e.g. "01" from "TCGA-DU-6397-01A-...").
// Barcodes without a fourth segment of at least two characters are
// malformed for this purpose.
func SampleTypeCode(bc string) (string, error) {
	parts := strings.Split(bc, "-")
	if len(parts) < PatientSegments+1 || len(parts[PatientSegments]) < 2 {
		return "", &MalformedIdentifierError{Barcode: bc}
	}
	return parts[PatientSegments][:2], nil
}

// IsTumor reports whether a sample type code denotes tumor tissue.
// TCGA codes 01-09 are tumors; 10-19 are normals; 20-29 are controls.
func IsTumor(code string) bool {
	if len(code) != 2 {
		return false
	}
	return code[0] == '0' && code[1] >= '1' && code[1] <= '9'
}
