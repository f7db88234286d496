// Package chrpos defines the order in which chromosomes must appear in
// association files, and the aliases by which chromosomes may be named.
package chrpos

import (
	"fmt"
	"strconv"
)

// defaultOrder is autosomes, then X, Y and MT. It is deliberately not
// alphabetic.
var defaultOrder = func() []string {
	out := make([]string, 0, 25)
	for i := 1; i <= 22; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return append(out, "X", "Y", "MT")
}()

var defaultAliases = map[string]string{
	"23": "X",
	"24": "Y",
	"25": "MT",
	"M":  "MT",
}

// Table maps raw chromosome names to canonical ones and canonical names to
// their position in the global order. A Table is read-only after
// construction.
type Table struct {
	order   []string
	index   map[string]int
	aliases map[string]string
}

// Default is the Table built with no extra aliases.
var Default = MustNewTable(nil)

// NewTable builds a Table from the default order and aliases, plus any extra
// aliases. Every "chr"-prefixed form of a canonical name or alias is also
// accepted. Extra aliases must point at a canonical chromosome.
func NewTable(extra map[string]string) (*Table, error) {
	t := &Table{
		order:   append([]string(nil), defaultOrder...),
		index:   make(map[string]int, len(defaultOrder)),
		aliases: make(map[string]string),
	}

	for i, chrom := range t.order {
		t.index[chrom] = i
		t.aliases["chr"+chrom] = chrom
	}

	for alias, chrom := range defaultAliases {
		t.aliases[alias] = chrom
		t.aliases["chr"+alias] = chrom
	}

	for alias, chrom := range extra {
		if _, known := t.index[chrom]; !known {
			return nil, fmt.Errorf("chromosome alias %q points at %q, which is not one of %q", alias, chrom, t.order)
		}
		if _, canonical := t.index[alias]; canonical {
			return nil, fmt.Errorf("chromosome alias %q would shadow a canonical chromosome", alias)
		}
		t.aliases[alias] = chrom
	}

	return t, nil
}

// MustNewTable is like NewTable but panics on error.
func MustNewTable(extra map[string]string) *Table {
	t, err := NewTable(extra)
	if err != nil {
		panic(err)
	}

	return t
}

// Normalize returns the canonical name for chrom. Names that are neither
// canonical nor aliased are returned unchanged.
func (t *Table) Normalize(chrom string) string {
	if canonical, exists := t.aliases[chrom]; exists {
		return canonical
	}

	return chrom
}

// Index returns the position of a canonical chromosome in the global order.
func (t *Table) Index(chrom string) (int, bool) {
	i, exists := t.index[chrom]
	return i, exists
}

// Order returns a copy of the global chromosome order.
func (t *Table) Order() []string {
	return append([]string(nil), t.order...)
}
