package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncoviz/tcga-explore/internal/annotate"
	"github.com/oncoviz/tcga-explore/internal/duckdb"
)

func TestAnnotationWriter_WriteTable(t *testing.T) {
	samples := []annotate.SampleRecord{
		{ID: "S1", Barcode: "TCGA-01-AAAA-01A"},
		{ID: "S2", Barcode: "TCGA-02-BBBB-01A"},
	}
	table := &annotate.Table{
		SampleIDs: []string{"S1", "S2"},
		Genes:     []string{"IDH1", "TP53"},
		Presence: [][]bool{
			{true, false},
			{false, false},
		},
	}

	var buf bytes.Buffer
	w := NewAnnotationWriter(&buf)
	require.NoError(t, w.WriteTable(samples, table))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "sample_id\tpatient_id\tIDH1\tTP53", lines[0])
	assert.Equal(t, "S1\tTCGA-01-AAAA\tTRUE\tFALSE", lines[1])
	assert.Equal(t, "S2\tTCGA-02-BBBB\tFALSE\tFALSE", lines[2])
}

func TestAnnotationWriter_MetaColumns(t *testing.T) {
	samples := []annotate.SampleRecord{
		{
			ID: "S1", Barcode: "TCGA-01-AAAA-01A",
			Meta: map[string]string{"tumor_grade": "G2", "vital_status": "Alive"},
		},
		{ID: "S2", Barcode: "TCGA-02-BBBB-01A"}, // no clinical record
	}
	table := &annotate.Table{
		SampleIDs: []string{"S1", "S2"},
		Genes:     []string{"IDH1"},
		Presence:  [][]bool{{true, false}},
	}

	var buf bytes.Buffer
	w := NewAnnotationWriter(&buf)
	w.SetMetaColumns([]string{"tumor_grade", "vital_status"})
	require.NoError(t, w.WriteTable(samples, table))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "sample_id\tpatient_id\ttumor_grade\tvital_status\tIDH1", lines[0])
	assert.Equal(t, "S1\tTCGA-01-AAAA\tG2\tAlive\tTRUE", lines[1])
	assert.Equal(t, "S2\tTCGA-02-BBBB\t-\t-\tFALSE", lines[2])
}

func TestAnnotationWriter_MalformedBarcode(t *testing.T) {
	samples := []annotate.SampleRecord{
		{ID: "S1", Barcode: "bad"},
	}
	table := &annotate.Table{
		SampleIDs: []string{"S1"},
		Genes:     nil,
		Presence:  nil,
	}

	var buf bytes.Buffer
	w := NewAnnotationWriter(&buf)
	require.Error(t, w.WriteTable(samples, table))
}

func TestSummaryWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := NewSummaryWriter(&buf)

	require.NoError(t, sw.WriteHeader())
	require.NoError(t, sw.Write(duckdb.GeneCount{Gene: "IDH1", Patients: 77}, 100))
	require.NoError(t, sw.Write(duckdb.GeneCount{Gene: "TP53", Patients: 50}, 100))
	require.NoError(t, sw.Write(duckdb.GeneCount{Gene: "ATRX", Patients: 3}, 0))
	require.NoError(t, sw.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "gene\tmutated_patients\tfrequency", lines[0])
	assert.Equal(t, "IDH1\t77\t0.770", lines[1])
	assert.Equal(t, "TP53\t50\t0.500", lines[2])
	assert.Equal(t, "ATRX\t3\t-", lines[3])
}
