package assoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/phenolist"
	"go.uber.org/zap"
)

// PhenoReader presents the association files of one phenotype as a single
// stream. Each file must already be sorted by chromosome and position, and
// files must not overlap; PhenoReader orders the files by their first variant
// and verifies the global order while streaming.
type PhenoReader struct {
	pheno  phenolist.Phenotype
	opts   Options
	fields []string
	paths  []string
}

type fileStart struct {
	path      string
	chromIdx  int
	pos       int
	fields    []string
	fieldsKey string
}

// NewPhenoReader peeks at the first variant of every association file of
// pheno to order the files, and checks that all files map the same fields.
func NewPhenoReader(pheno phenolist.Phenotype, opts Options) (*PhenoReader, error) {
	opts = opts.withDefaults()

	if len(pheno.AssocFiles) == 0 {
		return nil, fmt.Errorf("phenotype %q has no association files", pheno.Phenocode)
	}

	starts := make([]fileStart, 0, len(pheno.AssocFiles))
	for _, path := range pheno.AssocFiles {
		start, err := peekFile(path, pheno, opts)
		if err != nil {
			return nil, err
		}

		if len(starts) > 0 && start.fieldsKey != starts[0].fieldsKey {
			return nil, &sumstats.ConsistencyError{
				Phenocode: pheno.Phenocode,
				What:      "set of fields",
				PathA:     starts[0].path,
				PathB:     start.path,
				A:         starts[0].fieldsKey,
				B:         start.fieldsKey,
			}
		}

		starts = append(starts, start)
	}

	sort.SliceStable(starts, func(i, j int) bool {
		if starts[i].chromIdx != starts[j].chromIdx {
			return starts[i].chromIdx < starts[j].chromIdx
		}
		return starts[i].pos < starts[j].pos
	})

	pr := &PhenoReader{
		pheno:  pheno,
		opts:   opts,
		fields: starts[0].fields,
	}
	for _, start := range starts {
		pr.paths = append(pr.paths, start.path)
	}

	opts.Logger.Debug("ordered association files",
		zap.String("phenocode", pheno.Phenocode),
		zap.Strings("paths", pr.paths),
	)

	return pr, nil
}

func peekFile(path string, pheno phenolist.Phenotype, opts Options) (fileStart, error) {
	r, err := OpenFile(path, VariantMode, pheno, opts)
	if err != nil {
		return fileStart{}, err
	}
	defer r.Close()

	v := r.Read()
	if v == nil {
		if err := r.Err(); err != nil {
			return fileStart{}, err
		}
		return fileStart{}, &sumstats.FormatError{
			Path:   path,
			Reason: "No variants with a p-value were found, so this file cannot be placed in chromosome order.",
		}
	}

	chromIdx, ok := opts.Chroms.Index(v.Chrom())
	if !ok {
		return fileStart{}, &sumstats.OrderError{Path: path, Chrom: v.Chrom(), RequiredOrder: opts.Chroms.Order(), UnknownChrom: true}
	}

	fields := v.Fields()

	return fileStart{
		path:      path,
		chromIdx:  chromIdx,
		pos:       v.Pos(),
		fields:    fields,
		fieldsKey: strings.Join(fields, ","),
	}, nil
}

// Phenotype returns the phenotype this reader was built for.
func (pr *PhenoReader) Phenotype() phenolist.Phenotype { return pr.pheno }

// Fields returns the sorted field names shared by every file.
func (pr *PhenoReader) Fields() []string {
	return append([]string(nil), pr.fields...)
}

// Paths returns the association files in the order they will be read.
func (pr *PhenoReader) Paths() []string {
	return append([]string(nil), pr.paths...)
}

// Variants starts a new pass over the phenotype's variants. The stream must be
// consumed by one caller and closed.
func (pr *PhenoReader) Variants() *VariantStream {
	return &VariantStream{
		pr:           pr,
		prevChromIdx: -1,
		prevPos:      -1,
	}
}

// Info parses the per-phenotype fields from every association file. All
// files must yield identical values.
func (pr *PhenoReader) Info() (Info, error) {
	var first Info
	for i, path := range pr.paths {
		info, err := ReadInfo(path, pr.pheno, pr.opts)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			first = info
			continue
		}

		if !info.Equal(first) {
			return nil, &sumstats.ConsistencyError{
				Phenocode: pr.pheno.Phenocode,
				What:      "pheno info",
				PathA:     pr.paths[0],
				PathB:     path,
				A:         first.String(),
				B:         info.String(),
			}
		}
	}

	return first, nil
}

// VariantStream yields a phenotype's variants ordered by chromosome and
// position, with variants that share a position ordered by ref and then alt.
type VariantStream struct {
	pr *PhenoReader

	next int
	cur  *FileReader

	pending     Variant
	pendingPath string
	group       []Variant

	prevChrom    string
	prevChromIdx int
	prevPos      int

	err    error
	closed bool
}

// Read returns the next variant, or nil when the stream is exhausted or has
// failed. Check Err after Read returns nil.
func (s *VariantStream) Read() Variant {
	if s.err != nil || s.closed {
		return nil
	}

	if len(s.group) == 0 && !s.fillGroup() {
		return nil
	}

	v := s.group[0]
	s.group = s.group[1:]

	return v
}

// Err returns the first error encountered by the stream.
func (s *VariantStream) Err() error {
	return s.err
}

// Close releases the file currently being read. It is safe to call more
// than once, and to call before the stream is exhausted.
func (s *VariantStream) Close() error {
	s.closed = true
	s.group = nil
	s.pending = nil

	if s.cur == nil {
		return nil
	}

	err := s.cur.Close()
	s.cur = nil

	return err
}

func (s *VariantStream) fail(err error) bool {
	s.err = err
	s.Close()

	return false
}

// pull returns the next variant across all files in order, with the path it
// came from. It returns nil at the end of the last file.
func (s *VariantStream) pull() (Variant, string, error) {
	for {
		if s.cur == nil {
			if s.next >= len(s.pr.paths) {
				return nil, "", nil
			}

			r, err := OpenFile(s.pr.paths[s.next], VariantMode, s.pr.pheno, s.pr.opts)
			if err != nil {
				return nil, "", err
			}
			s.cur = r
			s.next++
		}

		if v := s.cur.Read(); v != nil {
			return v, s.cur.Path(), nil
		}

		err := s.cur.Err()
		closeErr := s.cur.Close()
		s.cur = nil
		if err != nil {
			return nil, "", err
		}
		if closeErr != nil {
			return nil, "", pfx.Err(closeErr)
		}
	}
}

// fillGroup reads every variant at the next (chrom, pos), validates that the
// position does not go backwards, and sorts the group by ref and alt.
func (s *VariantStream) fillGroup() bool {
	first, path := s.pending, s.pendingPath
	s.pending = nil
	if first == nil {
		var err error
		first, path, err = s.pull()
		if err != nil {
			return s.fail(err)
		}
		if first == nil {
			s.Close()
			return false
		}
	}

	chrom, pos := first.Chrom(), first.Pos()
	group := []Variant{first}
	for {
		v, vPath, err := s.pull()
		if err != nil {
			return s.fail(err)
		}
		if v == nil {
			break
		}
		if v.Chrom() != chrom || v.Pos() != pos {
			s.pending, s.pendingPath = v, vPath
			break
		}
		group = append(group, v)
	}

	chroms := s.pr.opts.Chroms
	chromIdx, ok := chroms.Index(chrom)
	if !ok {
		return s.fail(&sumstats.OrderError{Path: path, Chrom: chrom, RequiredOrder: chroms.Order(), UnknownChrom: true})
	}
	if chromIdx < s.prevChromIdx || (chromIdx == s.prevChromIdx && pos < s.prevPos) {
		return s.fail(&sumstats.OrderError{
			Path:          path,
			RequiredOrder: chroms.Order(),
			Chrom:         chrom,
			PrevChrom:     s.prevChrom,
			Pos:           pos,
			PrevPos:       s.prevPos,
		})
	}
	s.prevChrom, s.prevChromIdx, s.prevPos = chrom, chromIdx, pos

	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Ref() != group[j].Ref() {
			return group[i].Ref() < group[j].Ref()
		}
		return group[i].Alt() < group[j].Alt()
	})
	s.group = group

	return true
}
