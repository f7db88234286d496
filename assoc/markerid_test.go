package assoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerIDRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		markerID string
		chrom    string
		pos      int
		ref, alt string
	}{
		{"1:100_A/G", "1", 100, "A", "G"},
		{"X:5_-/AT", "X", 5, "-", "AT"},
		{"chr2:7_.*/*", "chr2", 7, ".*", "*"},
		{"MT:16569_ACGT/T", "MT", 16569, "ACGT", "T"},
	} {
		t.Run(tc.markerID, func(t *testing.T) {
			chrom, pos, ref, alt, err := ParseMarkerID(tc.markerID)
			require.NoError(t, err)
			assert.Equal(t, tc.chrom, chrom)
			assert.Equal(t, tc.pos, pos)
			assert.Equal(t, tc.ref, ref)
			assert.Equal(t, tc.alt, alt)

			assert.Equal(t, tc.markerID, FormatMarkerID(chrom, pos, ref, alt))
		})
	}
}

func TestParseMarkerIDRejects(t *testing.T) {
	for _, markerID := range []string{
		"1:100_N/G",
		"1:x_A/G",
		"1:100_A",
		"1-100_A/G",
		":100_A/G",
		"1:100_A/G extra",
		"",
	} {
		_, _, _, _, err := ParseMarkerID(markerID)
		assert.Error(t, err, markerID)
	}
}
