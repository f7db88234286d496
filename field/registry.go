package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carbocation/sumstats"
)

// Registry is a read-only table of field descriptors with case-insensitive
// alias resolution and per-field value parsing.
type Registry struct {
	fields     []Descriptor
	byName     map[string]int
	aliases    map[string]string // lowercased alias => field name
	nullValues map[string]struct{}
}

// Default is built from DefaultFields and DefaultNullValues.
var Default = MustNewRegistry(DefaultFields(), nil, DefaultNullValues)

// NewRegistry validates fields and builds a Registry. Every field is
// implicitly its own lowercased alias. extraAliases adds alias => field name
// entries. A field name used twice, an alias claimed by two fields, or an
// extra alias naming an unknown field is a *sumstats.SchemaError.
func NewRegistry(fields []Descriptor, extraAliases map[string]string, nullValues []string) (*Registry, error) {
	r := &Registry{
		fields:     make([]Descriptor, 0, len(fields)),
		byName:     make(map[string]int, len(fields)),
		aliases:    make(map[string]string),
		nullValues: make(map[string]struct{}, len(nullValues)),
	}

	for _, d := range fields {
		if _, exists := r.byName[d.Name]; exists {
			return nil, &sumstats.SchemaError{Constraint: fmt.Sprintf("field %q is defined twice", d.Name)}
		}

		d.Aliases = append([]string{d.Name}, d.Aliases...)
		for i, alias := range d.Aliases {
			d.Aliases[i] = strings.ToLower(alias)
			if err := r.claim(d.Aliases[i], d.Name); err != nil {
				return nil, err
			}
		}

		r.byName[d.Name] = len(r.fields)
		r.fields = append(r.fields, d)
	}

	for alias, name := range extraAliases {
		idx, exists := r.byName[name]
		if !exists {
			return nil, &sumstats.SchemaError{Constraint: fmt.Sprintf("field_aliases maps %q to %q, which is not a known field", alias, name)}
		}

		alias = strings.ToLower(alias)
		if r.aliases[alias] == name {
			continue
		}
		if err := r.claim(alias, name); err != nil {
			return nil, err
		}
		r.fields[idx].Aliases = append(r.fields[idx].Aliases, alias)
	}

	for _, token := range nullValues {
		r.nullValues[token] = struct{}{}
	}

	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(fields []Descriptor, extraAliases map[string]string, nullValues []string) *Registry {
	r, err := NewRegistry(fields, extraAliases, nullValues)
	if err != nil {
		panic(err)
	}

	return r
}

func (r *Registry) claim(alias, name string) error {
	if owner, exists := r.aliases[alias]; exists && owner != name {
		return &sumstats.SchemaError{Constraint: fmt.Sprintf("alias %q is claimed by both %q and %q", alias, owner, name)}
	}
	r.aliases[alias] = name

	return nil
}

// Field returns the descriptor named name.
func (r *Registry) Field(name string) (Descriptor, bool) {
	idx, exists := r.byName[name]
	if !exists {
		return Descriptor{}, false
	}

	d := r.fields[idx]
	d.Aliases = append([]string(nil), d.Aliases...)

	return d, true
}

// Names returns every field name in table order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.fields))
	for _, d := range r.fields {
		out = append(out, d.Name)
	}

	return out
}

// Resolve maps a column name to a field name, case-insensitively.
func (r *Registry) Resolve(colname string) (string, bool) {
	name, exists := r.aliases[strings.ToLower(colname)]
	return name, exists
}

// Aliases returns a copy of the alias => field name table.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}

	return out
}

// RawInputFields returns, in table order, the names of fields in any of
// groups that are expected to be read from association files.
func (r *Registry) RawInputFields(groups ...Group) []string {
	out := make([]string, 0, len(r.fields))
	for _, d := range r.fields {
		if !d.FromRawInput {
			continue
		}
		for _, g := range groups {
			if d.Group == g {
				out = append(out, d.Name)
				break
			}
		}
	}

	return out
}

// IsNull reports whether raw is one of the registry's null tokens.
func (r *Registry) IsNull(raw string) bool {
	_, isNull := r.nullValues[raw]
	return isNull
}

// Parse converts raw to the type of the named field, checks its range, and
// rounds it to the field's significant figures. A null token in a nullable
// field short-circuits to the null value. Failures are *sumstats.SchemaError
// values naming the field, the raw value and the violated constraint; callers
// fill in the file context.
func (r *Registry) Parse(name, raw string) (Value, error) {
	idx, exists := r.byName[name]
	if !exists {
		return Value{}, &sumstats.SchemaError{Field: name, Raw: raw, Constraint: "unknown field"}
	}
	d := &r.fields[idx]

	if d.Nullable && r.IsNull(raw) {
		return Null(d.Type), nil
	}

	fail := func(constraint string, err error) (Value, error) {
		return Value{}, &sumstats.SchemaError{
			Field:      d.Name,
			Raw:        raw,
			Constraint: fmt.Sprintf("%s; constraints %s", constraint, d),
			Err:        err,
		}
	}

	switch d.Type {
	case TypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fail("not an int", err)
		}
		if violation := d.Range.Check(float64(i)); violation != "" {
			return fail(violation, nil)
		}
		return Int(i), nil

	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fail("not a float", err)
		}
		if violation := d.Range.Check(f); violation != "" {
			return fail(violation, nil)
		}
		if d.SigFigs > 0 {
			if f, err = RoundSig(f, d.SigFigs); err != nil {
				return fail("cannot be rounded", err)
			}
		}
		return Float(f), nil
	}

	return String(raw), nil
}
