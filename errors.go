package sumstats

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxRenderedLine bounds how much of an offending line is carried into an
// error message.
const MaxRenderedLine = 5000

// RenderLine joins the values of a parsed line for use in diagnostics. Lines
// longer than MaxRenderedLine are reduced to their first and last 200
// characters.
func RenderLine(values []string) string {
	s := fmt.Sprintf("%q", values)
	if len(s) > MaxRenderedLine {
		head, tail := 200, len(s)-200
		for head > 0 && !utf8.RuneStart(s[head]) {
			head--
		}
		for tail < len(s) && !utf8.RuneStart(s[tail]) {
			tail++
		}
		s = s[:head] + " ... " + s[tail:]
	}

	return s
}

// FormatError describes an input file that cannot be tokenized: no usable
// delimiter, a line with the wrong number of values, a malformed MARKER_ID,
// or a MARKER_ID that disagrees with the chrom/pos columns.
type FormatError struct {
	Path   string
	Line   int // 1-based; 0 if the problem concerns the whole file
	Header []string
	Values string // already truncated with RenderLine
	Reason string
	Hint   string
}

func (e *FormatError) Error() string {
	b := strings.Builder{}
	b.WriteString(e.Reason)
	if e.Line > 0 {
		fmt.Fprintf(&b, "\n- On line %d", e.Line)
	}
	if e.Values != "" {
		fmt.Fprintf(&b, "\n- The line: %s", e.Values)
	}
	if e.Header != nil {
		fmt.Fprintf(&b, "\n- The header: %q", e.Header)
	}
	fmt.Fprintf(&b, "\n- In file: %q", e.Path)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n%s", e.Hint)
	}

	return b.String()
}

// SchemaError describes a value or header that does not conform to the field
// registry. When Field is set, Raw and Constraint describe a rejected value.
// When Missing is set, the header lacked required fields.
type SchemaError struct {
	Path       string
	Line       int
	Field      string
	Raw        string
	Constraint string
	Values     string

	Missing []string
	Mapped  map[string]int
	Header  []string
	Aliases map[string]string

	Err error
}

func (e *SchemaError) Error() string {
	b := strings.Builder{}

	switch {
	case len(e.Missing) > 0:
		fmt.Fprintf(&b, "Some required fields weren't mapped to columns in file %q.\n", e.Path)
		fmt.Fprintf(&b, "The fields that were required but not present are: %q\n", e.Missing)
		fmt.Fprintf(&b, "field_aliases = %v\n", e.Aliases)
		fmt.Fprintf(&b, "Here are all the column names from that file: %q\n", e.Header)
		if len(e.Mapped) > 0 {
			b.WriteString("Here are the fields that successfully mapped:\n")
			for _, name := range sortedKeys(e.Mapped) {
				idx := e.Mapped[name]
				if idx < 0 || idx >= len(e.Header) {
					fmt.Fprintf(&b, "- %s: (from MARKER_ID)\n", name)
					continue
				}
				fmt.Fprintf(&b, "- %s: %s (column #%d)\n", name, e.Header[idx], idx)
			}
		} else {
			b.WriteString("No fields successfully mapped.\n")
		}
		b.WriteString("You need to modify your input files or set field_aliases in your config.")
	case e.Field != "":
		fmt.Fprintf(&b, "failed on field %q attempting to convert value %q (%s)", e.Field, e.Raw, e.Constraint)
		if e.Path != "" {
			fmt.Fprintf(&b, " in %q", e.Path)
		}
		if e.Line > 0 {
			fmt.Fprintf(&b, " on line %d", e.Line)
		}
		if e.Values != "" {
			fmt.Fprintf(&b, " with values %s", e.Values)
		}
		if e.Header != nil {
			fmt.Fprintf(&b, " given colnames %q", e.Header)
		}
	default:
		b.WriteString(e.Constraint)
		if e.Path != "" {
			fmt.Fprintf(&b, " (file %q)", e.Path)
		}
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// OrderError reports a chromosome or position that violates the required
// global order, or a chromosome that has no place in that order.
type OrderError struct {
	Path          string
	RequiredOrder []string
	Chrom         string
	PrevChrom     string
	Pos           int
	PrevPos       int
	UnknownChrom  bool
}

func (e *OrderError) Error() string {
	if e.UnknownChrom {
		return fmt.Sprintf("It looks like one of your variants has the chromosome %q, which is not among the supported chromosomes %q.\n"+
			"Filter your input files to the supported chromosomes, e.g.:\n"+
			"zless my-input-file.tsv | perl -nale 'print if $. == 1 or m{^(1?[0-9]|2[0-2]|X|Y|MT?)\\t}' | gzip > my-replacement-input-file.tsv.gz",
			e.Chrom, e.RequiredOrder)
	}

	if e.Chrom != e.PrevChrom {
		return fmt.Sprintf("The chromosomes in your file appear to be in the wrong order.\n"+
			"The required order is: %q\n"+
			"But in your file, the chromosome %q came after the chromosome %q",
			e.RequiredOrder, e.Chrom, e.PrevChrom)
	}

	return fmt.Sprintf("The positions in your file appear to be in the wrong order.\n"+
		"In your file, the position %d came after the position %d on chromosome %q",
		e.Pos, e.PrevPos, e.Chrom)
}

// ConsistencyError reports files (or lines) of one phenotype that disagree
// about something that must be shared: their mapped field set, or the
// per-phenotype metadata parsed from them.
type ConsistencyError struct {
	Phenocode string
	What      string
	PathA     string
	PathB     string
	Line      int
	A         string
	B         string
}

func (e *ConsistencyError) Error() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "The %s parsed for the pheno %q disagrees.\n", e.What, e.Phenocode)
	fmt.Fprintf(&b, "- parsed from %q:\n    %s\n", e.PathA, e.A)
	if e.Line > 0 {
		fmt.Fprintf(&b, "- parsed from line %d of %q:\n    %s", e.Line, e.PathB, e.B)
	} else {
		fmt.Fprintf(&b, "- parsed from %q:\n    %s", e.PathB, e.B)
	}

	return b.String()
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
