package loci

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"
)

// row is one line of the loci TSV. Null values are written as empty cells.
type row struct {
	Phenocode    string `csv:"phenocode"`
	Chrom        string `csv:"chrom"`
	Pos          int    `csv:"pos"`
	Ref          string `csv:"ref"`
	Alt          string `csv:"alt"`
	PValue       string `csv:"pval"`
	Beta         string `csv:"beta"`
	SEBeta       string `csv:"sebeta"`
	MAF          string `csv:"maf"`
	RSIDs        string `csv:"rsids"`
	NearestGenes string `csv:"nearest_genes"`
}

func NullFloatFormatter(n null.Float) string {
	if !n.Valid {
		return ""
	}

	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}

func NullStringFormatter(n null.String) string {
	if !n.Valid {
		return ""
	}

	return n.String
}

// WriteTSV writes loci as a tab-delimited table with a header.
func WriteTSV(w io.Writer, loci []Locus) error {
	rows := make([]*row, 0, len(loci))
	for _, l := range loci {
		rows = append(rows, &row{
			Phenocode:    l.Phenocode,
			Chrom:        l.Chrom,
			Pos:          l.Pos,
			Ref:          l.Ref,
			Alt:          l.Alt,
			PValue:       strconv.FormatFloat(l.PValue, 'g', -1, 64),
			Beta:         NullFloatFormatter(l.Beta),
			SEBeta:       NullFloatFormatter(l.SEBeta),
			MAF:          NullFloatFormatter(l.MAF),
			RSIDs:        NullStringFormatter(l.RSIDs),
			NearestGenes: NullStringFormatter(l.NearestGenes),
		})
	}

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = '\t'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}

	return bw.Flush()
}

// nullFloatJSON keeps valid floats numeric and renders null as "".
func nullFloatJSON(n null.Float) interface{} {
	if !n.Valid {
		return ""
	}

	return n.Float64
}

// WriteJSON writes loci as a JSON array of objects with sorted keys. Null
// values are written as "".
func WriteJSON(w io.Writer, loci []Locus) error {
	out := make([]map[string]interface{}, 0, len(loci))
	for _, l := range loci {
		out = append(out, map[string]interface{}{
			"phenocode":     l.Phenocode,
			"chrom":         l.Chrom,
			"pos":           l.Pos,
			"ref":           l.Ref,
			"alt":           l.Alt,
			"pval":          l.PValue,
			"beta":          nullFloatJSON(l.Beta),
			"sebeta":        nullFloatJSON(l.SEBeta),
			"maf":           nullFloatJSON(l.MAF),
			"rsids":         NullStringFormatter(l.RSIDs),
			"nearest_genes": NullStringFormatter(l.NearestGenes),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
