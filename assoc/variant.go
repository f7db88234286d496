// Package assoc reads association files. A FileReader parses one file into
// typed variant records; a PhenoReader merges every file of one phenotype into
// a single stream ordered by chromosome, position, ref and alt.
package assoc

import (
	"sort"
	"strings"

	"github.com/carbocation/sumstats/field"
)

// Variant maps field names to parsed values. After a FileReader in variant
// mode has produced it, chrom, pos, ref and alt are always present.
type Variant map[string]field.Value

func (v Variant) Chrom() string { return v["chrom"].Str }
func (v Variant) Pos() int      { return int(v["pos"].Int) }
func (v Variant) Ref() string   { return v["ref"].Str }
func (v Variant) Alt() string   { return v["alt"].Str }

// PValue returns the variant's p-value. The boolean is false if pval is
// absent or null.
func (v Variant) PValue() (float64, bool) {
	pval, exists := v["pval"]
	if !exists {
		return 0, false
	}

	return pval.AsFloat()
}

// Fields returns the sorted names of the fields present in v.
func (v Variant) Fields() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// Equal reports whether v and other hold the same fields with the same
// values.
func (v Variant) Equal(other Variant) bool {
	if len(v) != len(other) {
		return false
	}
	for k, val := range v {
		if o, exists := other[k]; !exists || o != val {
			return false
		}
	}

	return true
}

func (v Variant) String() string {
	b := strings.Builder{}
	b.WriteByte('{')
	for i, k := range v.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v[k].String())
	}
	b.WriteByte('}')

	return b.String()
}

// Info holds the per-phenotype fields (sample counts) parsed from
// association files.
type Info = Variant
