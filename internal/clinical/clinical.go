package clinical

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// Patient is one row of a GDC clinical export (clinical.tsv). Column
// names follow the GDC data dictionary.
type Patient struct {
	CaseID           string `csv:"case_submitter_id"`
	ProjectID        string `csv:"project_id"`
	AgeAtDiagnosis   string `csv:"age_at_diagnosis"`
	Gender           string `csv:"gender"`
	PrimaryDiagnosis string `csv:"primary_diagnosis"`
	VitalStatus      string `csv:"vital_status"`
	Grade            string `csv:"tumor_grade"`
}

// LoadPatients reads a tab-delimited GDC clinical.tsv file into typed
// patient records, keyed by case submitter ID (the patient identifier
// shared with expression barcodes). A case appearing on multiple rows
// (one per diagnosis) keeps its first row.
func LoadPatients(path string) (map[string]*Patient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clinical file: %w", err)
	}
	defer f.Close()

	return ReadPatients(f)
}

// ReadPatients reads clinical patient records from an io.Reader.
func ReadPatients(r io.Reader) (map[string]*Patient, error) {
	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		cr := csv.NewReader(in)
		cr.Comma = '\t'
		cr.LazyQuotes = true
		return cr
	})

	var records []*Patient
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parse clinical file: %w", err)
	}

	patients := make(map[string]*Patient, len(records))
	for _, rec := range records {
		if rec.CaseID == "" {
			continue
		}
		if _, ok := patients[rec.CaseID]; ok {
			continue
		}
		patients[rec.CaseID] = rec
	}

	return patients, nil
}
