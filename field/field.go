// Package field describes every column that an association file may carry:
// its name, the aliases by which it may appear in a header, its type, and the
// constraints that a raw value must satisfy.
package field

import (
	"fmt"

	"gopkg.in/guregu/null.v3"
)

// Type is the value type of a field.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	}

	return "string"
}

// Group says which kind of record a field belongs to.
type Group int

const (
	PerVariant Group = iota
	PerAssoc
	PerPheno
)

func (g Group) String() string {
	switch g {
	case PerAssoc:
		return "per-assoc"
	case PerPheno:
		return "per-pheno"
	}

	return "per-variant"
}

// Range holds inclusive bounds. Either side may be absent.
type Range struct {
	Min null.Float
	Max null.Float
}

// Check returns a description of the violated bound, or "" if x is in range.
// NaN violates any bound.
func (r Range) Check(x float64) string {
	if r.Min.Valid && !(x >= r.Min.Float64) {
		return fmt.Sprintf("value %v is below the minimum %v", x, r.Min.Float64)
	}
	if r.Max.Valid && !(x <= r.Max.Float64) {
		return fmt.Sprintf("value %v is above the maximum %v", x, r.Max.Float64)
	}

	return ""
}

func (r Range) String() string {
	lo, hi := "-inf", "+inf"
	if r.Min.Valid {
		lo = fmt.Sprint(r.Min.Float64)
	}
	if r.Max.Valid {
		hi = fmt.Sprint(r.Max.Float64)
	}

	return "[" + lo + ", " + hi + "]"
}

// Descriptor is the immutable description of one field.
type Descriptor struct {
	Name     string
	Group    Group
	Aliases  []string
	Type     Type
	Nullable bool
	Range    Range
	SigFigs  int // 0 means no rounding
	Required bool

	// FromRawInput is false for fields that are added later by annotation,
	// e.g. rsids and nearest_genes.
	FromRawInput bool
}

func (d Descriptor) String() string {
	return fmt.Sprintf("{name: %s, type: %s, nullable: %v, range: %s, sigfigs: %d, required: %v}",
		d.Name, d.Type, d.Nullable, d.Range, d.SigFigs, d.Required)
}

func atLeast(min float64) Range {
	return Range{Min: null.FloatFrom(min)}
}

func between(min, max float64) Range {
	return Range{Min: null.FloatFrom(min), Max: null.FloatFrom(max)}
}

// DefaultNullValues are the tokens that mean "no value" in a nullable field.
var DefaultNullValues = []string{".", "NA"}

// DefaultFields returns the built-in field table.
func DefaultFields() []Descriptor {
	return []Descriptor{
		// Per variant
		{Name: "chrom", Group: PerVariant, Aliases: []string{"#CHROM", "chr", "chromosome"}, Required: true, FromRawInput: true},
		{Name: "pos", Group: PerVariant, Aliases: []string{"BEG", "BEGIN", "BP", "position"}, Type: TypeInt, Range: atLeast(0), Required: true, FromRawInput: true},
		{Name: "ref", Group: PerVariant, Aliases: []string{"reference", "ALLELE0"}, Required: true, FromRawInput: true},
		{Name: "alt", Group: PerVariant, Aliases: []string{"alternate", "ALLELE1"}, Required: true, FromRawInput: true},
		{Name: "rsids", Group: PerVariant},
		{Name: "nearest_genes", Group: PerVariant},

		// Per association
		{Name: "maf", Group: PerAssoc, Type: TypeFloat, Range: between(0, 0.5), SigFigs: 3, FromRawInput: true},
		{Name: "af", Group: PerAssoc, Aliases: []string{"A1FREQ", "frq"}, Type: TypeFloat, Range: between(0, 1), SigFigs: 3, FromRawInput: true},
		{Name: "ac", Group: PerAssoc, Type: TypeFloat, Range: atLeast(0), SigFigs: 3, FromRawInput: true},
		{Name: "pval", Group: PerAssoc, Aliases: []string{"PVALUE", "p", "p.value"}, Type: TypeFloat, Nullable: true, Range: between(0, 1), SigFigs: 3, Required: true, FromRawInput: true},
		{Name: "beta", Group: PerAssoc, Type: TypeFloat, Nullable: true, SigFigs: 3, FromRawInput: true},
		{Name: "sebeta", Group: PerAssoc, Aliases: []string{"se"}, Type: TypeFloat, Nullable: true, SigFigs: 3, FromRawInput: true},

		// Per phenotype
		{Name: "num_cases", Group: PerPheno, Aliases: []string{"NS.CASE", "N_cases"}, Type: TypeInt, Nullable: true, Range: atLeast(0), FromRawInput: true},
		{Name: "num_controls", Group: PerPheno, Aliases: []string{"NS.CTRL", "N_controls"}, Type: TypeInt, Nullable: true, Range: atLeast(0), FromRawInput: true},
		{Name: "num_samples", Group: PerPheno, Aliases: []string{"NS", "N"}, Type: TypeInt, Nullable: true, Range: atLeast(0), FromRawInput: true},
	}
}
