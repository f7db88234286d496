// Package phenolist loads the list of phenotypes to process and the
// association files that belong to each of them.
package phenolist

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sumstats"
	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"
)

// AssocFileSeparator joins multiple association file paths in one cell of a
// delimited pheno list.
const AssocFileSeparator = "|"

type Phenotype struct {
	Phenocode   string   `json:"phenocode"`
	AssocFiles  []string `json:"assoc_files"`
	Phenostring string   `json:"phenostring,omitempty"`
	Category    string   `json:"category,omitempty"`
	NumCases    null.Int `json:"num_cases"`
	NumControls null.Int `json:"num_controls"`
	NumSamples  null.Int `json:"num_samples"`
}

// row is one line of a delimited pheno list.
type row struct {
	Phenocode   string `csv:"phenocode"`
	AssocFiles  string `csv:"assoc_files"`
	Phenostring string `csv:"phenostring"`
	Category    string `csv:"category"`
	NumCases    string `csv:"num_cases"`
	NumControls string `csv:"num_controls"`
	NumSamples  string `csv:"num_samples"`
}

// Load reads a pheno list from path. A file whose first non-blank character
// is '[' is read as a JSON array; anything else is read as a delimited file
// with a header, with assoc_files joined by AssocFileSeparator.
func Load(opener *sumstats.Opener, path string) ([]Phenotype, error) {
	rc, err := opener.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var phenos []Phenotype
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &phenos); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		phenos, err = parseDelimited(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := Validate(phenos); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return phenos, nil
}

func parseDelimited(data []byte) ([]Phenotype, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sumstats.DetermineDelimiter(bytes.NewReader(data))
	r.LazyQuotes = true

	rows := []*row{}
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, err
	}

	out := make([]Phenotype, 0, len(rows))
	for i, rw := range rows {
		p := Phenotype{
			Phenocode:   strings.TrimSpace(rw.Phenocode),
			Phenostring: rw.Phenostring,
			Category:    rw.Category,
		}

		for _, path := range strings.Split(rw.AssocFiles, AssocFileSeparator) {
			if path = strings.TrimSpace(path); path != "" {
				p.AssocFiles = append(p.AssocFiles, path)
			}
		}

		var err error
		if p.NumCases, err = parseCount(rw.NumCases); err != nil {
			return nil, fmt.Errorf("row %d num_cases: %w", i+2, err)
		}
		if p.NumControls, err = parseCount(rw.NumControls); err != nil {
			return nil, fmt.Errorf("row %d num_controls: %w", i+2, err)
		}
		if p.NumSamples, err = parseCount(rw.NumSamples); err != nil {
			return nil, fmt.Errorf("row %d num_samples: %w", i+2, err)
		}

		out = append(out, p)
	}

	return out, nil
}

func parseCount(s string) (null.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "." {
		return null.Int{}, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return null.Int{}, err
	}

	return null.IntFrom(n), nil
}

// Validate checks that every phenotype has a unique, non-empty phenocode and
// at least one association file.
func Validate(phenos []Phenotype) error {
	seen := make(map[string]struct{}, len(phenos))
	for i, p := range phenos {
		if p.Phenocode == "" {
			return fmt.Errorf("phenotype #%d has no phenocode", i)
		}
		if _, dup := seen[p.Phenocode]; dup {
			return fmt.Errorf("phenocode %q appears more than once", p.Phenocode)
		}
		seen[p.Phenocode] = struct{}{}

		if len(p.AssocFiles) == 0 {
			return fmt.Errorf("phenotype %q has no assoc_files", p.Phenocode)
		}
	}

	return nil
}
