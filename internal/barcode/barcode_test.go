package barcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPatientID(t *testing.T) {
	tests := []struct {
		name    string
		barcode string
		want    string
		wantErr bool
	}{
		{"full barcode", "TCGA-DU-6397-01A-11R-1708-07", "TCGA-DU-6397", false},
		{"patient only", "TCGA-DU-6397", "TCGA-DU-6397", false},
		{"exactly three segments with suffix", "TCGA-01-AAAA-suffix", "TCGA-01-AAAA", false},
		{"non-canonical segment lengths accepted", "X-YY-ZZZZZ-rest", "X-YY-ZZZZZ", false},
		{"two segments", "TCGA-DU", "", true},
		{"no dashes", "bad", "", true},
		{"empty", "", "", true},
		{"empty segment", "TCGA--6397", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPatientID(tt.barcode)
			if tt.wantErr {
				require.Error(t, err)
				var merr *MalformedIdentifierError
				require.True(t, errors.As(err, &merr))
				assert.Equal(t, tt.barcode, merr.Barcode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSampleTypeCode(t *testing.T) {
	code, err := SampleTypeCode("TCGA-DU-6397-01A-11R-1708-07")
	require.NoError(t, err)
	assert.Equal(t, "01", code)

	code, err = SampleTypeCode("TCGA-DU-6397-10A")
	require.NoError(t, err)
	assert.Equal(t, "10", code)

	_, err = SampleTypeCode("TCGA-DU-6397")
	require.Error(t, err)

	_, err = SampleTypeCode("TCGA-DU-6397-1")
	require.Error(t, err)
}

func TestIsTumor(t *testing.T) {
	assert.True(t, IsTumor("01"))
	assert.True(t, IsTumor("02"))
	assert.True(t, IsTumor("09"))
	assert.False(t, IsTumor("10")) // blood-derived normal
	assert.False(t, IsTumor("11"))
	assert.False(t, IsTumor("00"))
	assert.False(t, IsTumor(""))
	assert.False(t, IsTumor("1"))
}
