package expr

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrixTSV = `gene_id	S1	S2	S3
ENSG0001	10	0	100
ENSG0002	90	100	100
ENSG0003	0	0	800
`

func TestReadMatrix(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(matrixTSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"S1", "S2", "S3"}, m.Samples)
	assert.Equal(t, []string{"ENSG0001", "ENSG0002", "ENSG0003"}, m.Genes)
	assert.Equal(t, []float64{10, 0, 100}, m.Counts[0])
	assert.Equal(t, []float64{0, 0, 800}, m.Counts[2])
}

func TestReadMatrix_Errors(t *testing.T) {
	_, err := ReadMatrix(strings.NewReader(""))
	require.Error(t, err)

	_, err = ReadMatrix(strings.NewReader("gene_id\n"))
	require.Error(t, err)

	// ragged row
	_, err = ReadMatrix(strings.NewReader("gene_id\tS1\tS2\nENSG0001\t10\n"))
	require.Error(t, err)

	// non-numeric count
	_, err = ReadMatrix(strings.NewReader("gene_id\tS1\nENSG0001\tNA\n"))
	require.Error(t, err)
}

func TestWriteTSV_RoundTrip(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(matrixTSV))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, m.WriteTSV(&buf))

	back, err := ReadMatrix(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, m.Genes, back.Genes)
	assert.Equal(t, m.Samples, back.Samples)
	assert.Equal(t, m.Counts, back.Counts)
}

func TestLog2CPM(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(matrixTSV))
	require.NoError(t, err)

	norm, err := m.Log2CPM()
	require.NoError(t, err)

	// S1 total = 100, so ENSG0001 S1: log2(10/100*1e6 + 1)
	want := math.Log2(10.0/100.0*1e6 + 1)
	assert.InDelta(t, want, norm.Counts[0][0], 1e-9)

	// Zero count stays log2(1) = 0.
	assert.Equal(t, 0.0, norm.Counts[0][1])

	// Original matrix unchanged.
	assert.Equal(t, 10.0, m.Counts[0][0])
}

func TestLog2CPM_ZeroTotalSample(t *testing.T) {
	m := &Matrix{
		Genes:   []string{"ENSG0001"},
		Samples: []string{"S1", "S2"},
		Counts:  [][]float64{{5, 0}},
	}

	_, err := m.Log2CPM()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S2")
}

func TestTopVariableGenes(t *testing.T) {
	m := &Matrix{
		Genes:   []string{"FLAT", "WILD", "MILD"},
		Samples: []string{"S1", "S2", "S3"},
		Counts: [][]float64{
			{5, 5, 5},
			{0, 100, 1000},
			{1, 2, 3},
		},
	}

	top, err := m.TopVariableGenes(2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "WILD", top[0].Gene)
	assert.Equal(t, "MILD", top[1].Gene)
	assert.Greater(t, top[0].Variance, top[1].Variance)

	// n larger than gene count returns everything.
	all, err := m.TopVariableGenes(10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "FLAT", all[2].Gene)
}

func TestCombineSamples(t *testing.T) {
	m := CombineSamples(map[string]map[string]float64{
		"S2": {"ENSG0001": 5, "ENSG0002": 7},
		"S1": {"ENSG0001": 3},
	})

	assert.Equal(t, []string{"S1", "S2"}, m.Samples)
	assert.Equal(t, []string{"ENSG0001", "ENSG0002"}, m.Genes)
	assert.Equal(t, []float64{3, 5}, m.Counts[0])
	// Missing gene in S1 filled with zero.
	assert.Equal(t, []float64{0, 7}, m.Counts[1])
}

func TestSubset(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(matrixTSV))
	require.NoError(t, err)

	sub, err := m.Subset([]string{"ENSG0003", "ENSG0001"}, []string{"S3", "S1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ENSG0003", "ENSG0001"}, sub.Genes)
	assert.Equal(t, []float64{800, 0}, sub.Counts[0])
	assert.Equal(t, []float64{100, 10}, sub.Counts[1])

	_, err = m.Subset([]string{"NOPE"}, []string{"S1"})
	require.Error(t, err)

	_, err = m.Subset([]string{"ENSG0001"}, []string{"NOPE"})
	require.Error(t, err)
}

const starTSV = `# gene-model: GENCODE v36
gene_id	gene_name	gene_type	unstranded	stranded_first	stranded_second
N_unmapped			2231969	2231969	2231969
N_multimapping			1768802	1768802	1768802
N_noFeature			924875	4714327	4721271
N_ambiguous			2775078	727907	725541
ENSG00000000003.15	TSPAN6	protein_coding	4135	2061	2074
ENSG00000000005.6	TNMD	protein_coding	0	0	0
`

func TestReadSTARCounts(t *testing.T) {
	counts, err := ReadSTARCounts(strings.NewReader(starTSV))
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, 4135.0, counts["ENSG00000000003.15"])
	assert.Equal(t, 0.0, counts["ENSG00000000005.6"])
}

func TestReadSTARCounts_NoGenes(t *testing.T) {
	_, err := ReadSTARCounts(strings.NewReader("gene_id\tgene_name\tgene_type\tunstranded\n"))
	require.Error(t, err)
}
