package annotate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncoviz/tcga-explore/internal/barcode"
	"github.com/oncoviz/tcga-explore/internal/maf"
)

func TestGenePresence_SharedPatient(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-suffix"},
		{ID: "S2", Barcode: "TCGA-01-AAAA-other"},
		{ID: "S3", Barcode: "TCGA-02-BBBB-suffix"},
	}
	calls := []maf.MutationCall{
		{Gene: "IDH1", Barcode: "TCGA-01-AAAA-extra"},
	}

	presence, err := GenePresence(samples, calls, "IDH1")
	require.NoError(t, err)

	// S1 and S2 share patient TCGA-01-AAAA; the match broadcasts to both.
	assert.Equal(t, map[string]bool{
		"S1": true,
		"S2": true,
		"S3": false,
	}, presence)
}

func TestGenePresence_SamplePreservation(t *testing.T) {
	var samples []SampleRecord
	for i := range 50 {
		samples = append(samples, SampleRecord{
			ID:      fmt.Sprintf("S%d", i),
			Barcode: fmt.Sprintf("TCGA-%02d-AAAA-01A", i%10),
		})
	}
	calls := []maf.MutationCall{
		{Gene: "TP53", Barcode: "TCGA-03-AAAA-01A"},
		{Gene: "TP53", Barcode: "TCGA-03-AAAA-02B"}, // same patient, second call
	}

	presence, err := GenePresence(samples, calls, "TP53")
	require.NoError(t, err)
	require.Len(t, presence, len(samples))

	for _, s := range samples {
		_, ok := presence[s.ID]
		assert.True(t, ok, "missing entry for %s", s.ID)
	}
}

func TestGenePresence_EmptyMutationsDefaultFalse(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
		{ID: "S2", Barcode: "TCGA-02-BBBB-01A"},
	}

	presence, err := GenePresence(samples, nil, "IDH1")
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"S1": false, "S2": false}, presence)
}

func TestGenePresence_GeneFilterIsExact(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
	}
	calls := []maf.MutationCall{
		{Gene: "TP53", Barcode: "TCGA-01-AAAA-01A"},
		{Gene: "idh1", Barcode: "TCGA-01-AAAA-01A"}, // wrong case, must not match
	}

	presence, err := GenePresence(samples, calls, "IDH1")
	require.NoError(t, err)
	assert.False(t, presence["S1"])

	presence, err = GenePresence(samples, calls, "TP53")
	require.NoError(t, err)
	assert.True(t, presence["S1"])
}

func TestGenePresence_MalformedSampleBarcode(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
		{ID: "S2", Barcode: "bad"},
	}

	_, err := GenePresence(samples, nil, "IDH1")
	require.Error(t, err)

	var merr *barcode.MalformedIdentifierError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "bad", merr.Barcode)
	assert.Contains(t, err.Error(), "S2")
}

func TestGenePresence_MalformedMutationBarcode(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
	}
	calls := []maf.MutationCall{
		{Gene: "IDH1", Barcode: "nodashes"},
	}

	_, err := GenePresence(samples, calls, "IDH1")
	require.Error(t, err)

	var merr *barcode.MalformedIdentifierError
	require.True(t, errors.As(err, &merr))
}

func TestGenePresence_MalformedBarcodeOnUnqueriedGeneIgnored(t *testing.T) {
	// The gene filter runs before key derivation, so calls for other
	// genes never have their barcodes parsed.
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
	}
	calls := []maf.MutationCall{
		{Gene: "TP53", Barcode: "bad"},
	}

	presence, err := GenePresence(samples, calls, "IDH1")
	require.NoError(t, err)
	assert.False(t, presence["S1"])
}

func TestGenePresence_EmptySamples(t *testing.T) {
	_, err := GenePresence(nil, nil, "IDH1")
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestMutatedPatients(t *testing.T) {
	calls := []maf.MutationCall{
		{Gene: "IDH1", Barcode: "TCGA-01-AAAA-01A"},
		{Gene: "IDH1", Barcode: "TCGA-01-AAAA-02B"}, // same patient twice
		{Gene: "IDH1", Barcode: "TCGA-02-BBBB-01A"},
		{Gene: "TP53", Barcode: "TCGA-03-CCCC-01A"},
	}

	patients, err := MutatedPatients(calls, "IDH1")
	require.NoError(t, err)

	assert.Len(t, patients, 2)
	assert.Contains(t, patients, "TCGA-01-AAAA")
	assert.Contains(t, patients, "TCGA-02-BBBB")
	assert.NotContains(t, patients, "TCGA-03-CCCC")
}

func TestMutatedPatients_Empty(t *testing.T) {
	patients, err := MutatedPatients(nil, "IDH1")
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestBroadcast(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
		{ID: "S2", Barcode: "TCGA-01-AAAA-02B"}, // same patient, second sample
		{ID: "S3", Barcode: "TCGA-02-BBBB-01A"},
	}
	mutated := map[string]struct{}{"TCGA-01-AAAA": {}}

	presence, err := Broadcast(samples, mutated)
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"S1": true, "S2": true, "S3": false}, presence)
}

func TestBroadcast_MalformedSampleBarcode(t *testing.T) {
	samples := []SampleRecord{
		{ID: "S1", Barcode: "TCGA-01"},
	}

	_, err := Broadcast(samples, map[string]struct{}{})
	require.Error(t, err)

	var malformed *barcode.MalformedIdentifierError
	require.ErrorAs(t, err, &malformed)
}

func TestBroadcast_EmptySamples(t *testing.T) {
	_, err := Broadcast(nil, map[string]struct{}{})
	require.ErrorIs(t, err, ErrEmptyInput)
}
