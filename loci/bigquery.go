package loci

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

// InsertBatchSize is the number of rows sent per streaming insert.
var InsertBatchSize = 500

type WrappedBigQuery struct {
	Context context.Context
	Client  *bigquery.Client
	Project string
	Dataset string
	Table   string
}

// bqLocus is the BigQuery row for one locus.
type bqLocus struct {
	Phenocode    string               `bigquery:"phenocode"`
	Chrom        string               `bigquery:"chrom"`
	Pos          int64                `bigquery:"pos"`
	Ref          string               `bigquery:"ref"`
	Alt          string               `bigquery:"alt"`
	PValue       float64              `bigquery:"pval"`
	Beta         bigquery.NullFloat64 `bigquery:"beta"`
	SEBeta       bigquery.NullFloat64 `bigquery:"sebeta"`
	MAF          bigquery.NullFloat64 `bigquery:"maf"`
	RSIDs        bigquery.NullString  `bigquery:"rsids"`
	NearestGenes bigquery.NullString  `bigquery:"nearest_genes"`
}

func toBigQuery(l Locus) bqLocus {
	return bqLocus{
		Phenocode:    l.Phenocode,
		Chrom:        l.Chrom,
		Pos:          int64(l.Pos),
		Ref:          l.Ref,
		Alt:          l.Alt,
		PValue:       l.PValue,
		Beta:         nullFloat64(l.Beta),
		SEBeta:       nullFloat64(l.SEBeta),
		MAF:          nullFloat64(l.MAF),
		RSIDs:        nullString(l.RSIDs),
		NearestGenes: nullString(l.NearestGenes),
	}
}

func nullFloat64(n null.Float) bigquery.NullFloat64 {
	return bigquery.NullFloat64{Float64: n.Float64, Valid: n.Valid}
}

func nullString(n null.String) bigquery.NullString {
	return bigquery.NullString{StringVal: n.String, Valid: n.Valid}
}

// CreateTable creates the destination table with the loci schema.
func (BQ *WrappedBigQuery) CreateTable() error {
	schema, err := bigquery.InferSchema(bqLocus{})
	if err != nil {
		return pfx.Err(err)
	}

	if err := BQ.table().Create(BQ.Context, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return pfx.Err(fmt.Errorf("creating %s.%s: %w", BQ.Dataset, BQ.Table, err))
	}

	return nil
}

// InsertLoci streams loci into the destination table in batches.
func (BQ *WrappedBigQuery) InsertLoci(loci []Locus) error {
	ins := BQ.table().Inserter()

	batch := make([]bqLocus, 0, InsertBatchSize)
	for i, l := range loci {
		batch = append(batch, toBigQuery(l))
		if len(batch) < InsertBatchSize && i < len(loci)-1 {
			continue
		}

		if err := ins.Put(BQ.Context, batch); err != nil {
			return pfx.Err(fmt.Errorf("inserting into %s.%s: %w", BQ.Dataset, BQ.Table, err))
		}
		batch = batch[:0]
	}

	return nil
}

func (BQ *WrappedBigQuery) table() *bigquery.Table {
	return BQ.Client.DatasetInProject(BQ.Project, BQ.Dataset).Table(BQ.Table)
}
