package sumstats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessHeaderDelimiter(t *testing.T) {
	for header, want := range map[string]string{
		"chrom\tpos\tref\talt\tpval":           "\t",
		"chrom pos ref alt pval":               " ",
		"chrom,pos,ref,alt,pval":               ",",
		"chrom\tpos\tref\talt\tp value, other": "\t",
		"chrom pos,ref,alt,pval,beta":          ",",
	} {
		got, ok := GuessHeaderDelimiter(header)
		assert.True(t, ok, header)
		assert.Equal(t, want, got, header)
	}
}

func TestGuessHeaderDelimiterFails(t *testing.T) {
	for _, header := range []string{
		"chrom\tpos\tref\talt",
		"chrom;pos;ref;alt;pval",
		"",
	} {
		_, ok := GuessHeaderDelimiter(header)
		assert.False(t, ok, header)
	}
}

func TestNewDelimiterError(t *testing.T) {
	err := NewDelimiterError("in.txt", "chrom;pos;ref;alt;pval")

	assert.Equal(t, 1, err.Line)
	assert.Contains(t, err.Error(), "Cannot guess what delimiter")
	assert.Contains(t, err.Error(), `"in.txt"`)
	assert.NotEmpty(t, err.Hint)
}

func TestDetermineDelimiter(t *testing.T) {
	r := strings.NewReader("phenocode\tassoc_files\tnum_cases\nt2d\ta.tsv|b.tsv\t100\ncad\tc.tsv\t200\n")
	assert.Equal(t, '\t', DetermineDelimiter(r))
}
