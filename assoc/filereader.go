package assoc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/field"
	"github.com/carbocation/sumstats/phenolist"
	"go.uber.org/zap"
)

// Mode selects which fields a FileReader maps from the header.
type Mode int

const (
	// VariantMode maps per-variant and per-association fields, and drops
	// lines without a p-value.
	VariantMode Mode = iota

	// InfoMode maps only per-phenotype fields and keeps every line.
	InfoMode
)

const markerIDColumn = "marker_id"

// fromMarkerID marks a field that is decoded from the MARKER_ID column rather
// than read from a column of its own.
const fromMarkerID = -1

var BufferSize = 4096 * 16

type column struct {
	field string
	idx   int
}

// FileReader streams one association file as typed variant records. Header
// problems, including missing required fields, are reported by OpenFile;
// problems with individual lines are reported by Err after Read returns nil.
type FileReader struct {
	path  string
	mode  Mode
	pheno phenolist.Phenotype
	opts  Options

	rc io.ReadCloser
	br *bufio.Reader

	delim     string
	colnames  []string
	mapped    map[string]int
	columns   []column
	markerCol int

	lineNum int
	err     error
}

// OpenFile opens path, guesses its delimiter, and maps its header to fields.
// The returned reader must be closed.
func OpenFile(path string, mode Mode, pheno phenolist.Phenotype, opts Options) (*FileReader, error) {
	opts = opts.withDefaults()

	rc, err := opts.Opener.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	r := &FileReader{
		path:      path,
		mode:      mode,
		pheno:     pheno,
		opts:      opts,
		rc:        rc,
		br:        bufio.NewReaderSize(rc, BufferSize),
		markerCol: -1,
	}

	if err := r.readHeader(); err != nil {
		rc.Close()
		return nil, err
	}

	opts.Logger.Debug("opened association file",
		zap.String("path", path),
		zap.String("delimiter", fmt.Sprintf("%q", r.delim)),
		zap.Strings("fields", r.Fields()),
		zap.Bool("marker_id", r.markerCol >= 0),
	)

	return r, nil
}

func (r *FileReader) readHeader() error {
	header, ok, err := r.readLine()
	if err != nil {
		return err
	}
	if !ok {
		return &sumstats.FormatError{Path: r.path, Reason: "Failed to read a header line from the file - is it empty?"}
	}

	delim, ok := sumstats.GuessHeaderDelimiter(header)
	if !ok {
		return sumstats.NewDelimiterError(r.path, header)
	}
	r.delim = delim

	for _, colname := range strings.Split(header, delim) {
		r.colnames = append(r.colnames, strings.ToLower(strings.Trim(colname, "\"' ")))
	}

	return r.mapFields()
}

func (r *FileReader) wantedFields() []string {
	if r.mode == InfoMode {
		return r.opts.Registry.RawInputFields(field.PerPheno)
	}

	return r.opts.Registry.RawInputFields(field.PerVariant, field.PerAssoc)
}

func (r *FileReader) mapFields() error {
	wanted := make(map[string]struct{})
	for _, name := range r.wantedFields() {
		wanted[name] = struct{}{}
	}

	r.mapped = make(map[string]int)
	for idx, colname := range r.colnames {
		name, ok := r.opts.Registry.Resolve(colname)
		if !ok {
			continue
		}
		if _, isWanted := wanted[name]; !isWanted {
			continue
		}
		if prev, dup := r.mapped[name]; dup {
			return &sumstats.SchemaError{
				Path:    r.path,
				Header:  r.colnames,
				Aliases: r.opts.Registry.Aliases(),
				Constraint: fmt.Sprintf("found two ways of mapping the field %q: column %q (#%d) and column %q (#%d)",
					name, r.colnames[prev], prev, colname, idx),
			}
		}
		r.mapped[name] = idx
	}

	if r.mode == VariantMode {
		for idx, colname := range r.colnames {
			if colname == markerIDColumn {
				r.markerCol = idx
				r.mapped["ref"] = fromMarkerID
				r.mapped["alt"] = fromMarkerID
				break
			}
		}
	}

	var missing []string
	for _, name := range r.wantedFields() {
		d, _ := r.opts.Registry.Field(name)
		if _, exists := r.mapped[name]; d.Required && !exists {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &sumstats.SchemaError{
			Path:    r.path,
			Missing: missing,
			Mapped:  r.mapped,
			Header:  r.colnames,
			Aliases: r.opts.Registry.Aliases(),
		}
	}

	for name, idx := range r.mapped {
		if idx != fromMarkerID {
			r.columns = append(r.columns, column{field: name, idx: idx})
		}
	}
	sort.Slice(r.columns, func(i, j int) bool { return r.columns[i].idx < r.columns[j].idx })

	return nil
}

// Path returns the path the reader was opened with.
func (r *FileReader) Path() string { return r.path }

// Fields returns the sorted names of the fields every record from this file
// will carry.
func (r *FileReader) Fields() []string {
	out := make([]string, 0, len(r.mapped))
	for name := range r.mapped {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// Read returns the next record, or nil at the end of the file or on error.
// Check Err after Read returns nil.
func (r *FileReader) Read() Variant {
	if r.err != nil {
		return nil
	}

	for {
		line, ok, err := r.readLine()
		if err != nil {
			r.err = err
			return nil
		}
		if !ok {
			return nil
		}

		values := strings.Split(line, r.delim)
		v, err := r.parse(values)
		if err != nil {
			r.err = err
			return nil
		}

		if r.mode == InfoMode {
			return v
		}

		keep, err := r.finishVariant(v, values)
		if err != nil {
			r.err = err
			return nil
		}
		if keep {
			return v
		}
	}
}

// Err returns the first error encountered while reading lines.
func (r *FileReader) Err() error {
	return r.err
}

func (r *FileReader) Close() error {
	return r.rc.Close()
}

// readLine returns the next line without its line terminator. The boolean is
// false at the end of the file; a final line terminator does not produce an
// empty line.
func (r *FileReader) readLine() (string, bool, error) {
	line, err := r.br.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
	} else if err != nil {
		return "", false, pfx.Err(fmt.Errorf("%s: %w", r.path, err))
	}
	r.lineNum++

	return strings.TrimRight(line, "\r\n"), true, nil
}

func (r *FileReader) parse(values []string) (Variant, error) {
	if len(values) != len(r.colnames) {
		return nil, &sumstats.FormatError{
			Path:   r.path,
			Line:   r.lineNum,
			Header: r.colnames,
			Values: sumstats.RenderLine(values),
			Reason: fmt.Sprintf("A line has %d values, but we expected %d.", len(values), len(r.colnames)),
		}
	}

	v := make(Variant, len(r.mapped))
	for _, col := range r.columns {
		val, err := r.opts.Registry.Parse(col.field, values[col.idx])
		if err != nil {
			return nil, r.withLineContext(err, values)
		}
		v[col.field] = val
	}

	return v, nil
}

// finishVariant applies the variant-mode filters and fix-ups to a parsed
// line. The boolean is false if the line should be dropped.
func (r *FileReader) finishVariant(v Variant, values []string) (bool, error) {
	if v["pval"].Null {
		return false, nil
	}

	maf, ok, err := r.opts.MAF.MAF(v, r.pheno)
	if err != nil {
		return false, r.withLineContext(err, values)
	}
	if ok && maf < r.opts.MinimumMAF {
		return false, nil
	}

	if r.markerCol >= 0 {
		if err := r.applyMarkerID(v, values); err != nil {
			return false, err
		}
	}

	v["chrom"] = field.String(r.opts.Chroms.Normalize(v.Chrom()))

	return true, nil
}

func (r *FileReader) applyMarkerID(v Variant, values []string) error {
	formatErr := func(reason string) error {
		return &sumstats.FormatError{
			Path:   r.path,
			Line:   r.lineNum,
			Header: r.colnames,
			Values: sumstats.RenderLine(values),
			Reason: reason,
		}
	}

	chrom, pos, ref, alt, err := ParseMarkerID(values[r.markerCol])
	if err != nil {
		return formatErr(err.Error())
	}

	if chrom != v.Chrom() || pos != v.Pos() {
		return formatErr(fmt.Sprintf("MARKER_ID %q disagrees with the chrom %q and pos %d columns",
			values[r.markerCol], v.Chrom(), v.Pos()))
	}

	v["ref"] = field.String(ref)
	v["alt"] = field.String(alt)

	return nil
}

func (r *FileReader) withLineContext(err error, values []string) error {
	var schemaErr *sumstats.SchemaError
	if errors.As(err, &schemaErr) {
		schemaErr.Path = r.path
		schemaErr.Line = r.lineNum
		schemaErr.Header = r.colnames
		schemaErr.Values = sumstats.RenderLine(values)
		return schemaErr
	}

	return fmt.Errorf("%s line %d: %w", r.path, r.lineNum, err)
}

// ReadInfo parses the per-phenotype fields from every line of path. Every
// line must agree; a file without data lines yields an empty Info.
func ReadInfo(path string, pheno phenolist.Phenotype, opts Options) (Info, error) {
	r, err := OpenFile(path, InfoMode, pheno, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	first := r.Read()
	if first == nil {
		return Info{}, r.Err()
	}

	for info := r.Read(); info != nil; info = r.Read() {
		if !info.Equal(first) {
			return nil, &sumstats.ConsistencyError{
				Phenocode: pheno.Phenocode,
				What:      "pheno info",
				PathA:     path,
				PathB:     path,
				Line:      r.lineNum,
				A:         first.String(),
				B:         info.String(),
			}
		}
	}

	return first, r.Err()
}
