package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncoviz/tcga-explore/internal/duckdb"
	"github.com/oncoviz/tcga-explore/internal/maf"
)

func TestRunSummary_FromStore(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "summary.tsv")

	dbPath := filepath.Join(dir, "mutations.duckdb")
	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.WriteMutations([]maf.MutationCall{
		{Gene: "IDH1", Barcode: "TCGA-01-AAAA-01A", Classification: "Missense_Mutation", ProteinChange: "p.R132H", Chromosome: "chr2", StartPosition: 1},
		{Gene: "IDH1", Barcode: "TCGA-02-BBBB-01A", Classification: "Missense_Mutation", ProteinChange: "p.R132C", Chromosome: "chr2", StartPosition: 2},
		{Gene: "TP53", Barcode: "TCGA-01-AAAA-01A", Classification: "Missense_Mutation", ProteinChange: "p.R175H", Chromosome: "chr17", StartPosition: 3},
	}))
	require.NoError(t, store.Close())

	require.NoError(t, runSummary("", dbPath, 0, false, out))

	lines := readLines(t, out)
	require.Len(t, lines, 3)
	assert.Equal(t, "gene\tmutated_patients\tfrequency", lines[0])
	assert.Equal(t, "IDH1\t2\t1.000", lines[1])
	assert.Equal(t, "TP53\t1\t0.500", lines[2])
}

func TestRunSummary_FromMAF(t *testing.T) {
	dir := t.TempDir()
	mafPath := writeFile(t, dir, "calls.maf",
		"Hugo_Symbol\tTumor_Sample_Barcode\n"+
			"IDH1\tTCGA-01-AAAA-01A\n"+
			"IDH1\tTCGA-01-AAAA-02B\n"+ // same patient twice
			"TP53\tTCGA-02-BBBB-01A\n")
	out := filepath.Join(dir, "summary.tsv")

	require.NoError(t, runSummary(mafPath, "", 1, false, out))

	lines := readLines(t, out)
	require.Len(t, lines, 2) // header + top 1
	assert.Equal(t, "IDH1\t1\t0.500", lines[1])
}
