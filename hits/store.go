package hits

import (
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sumstats/loci"
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS hits (
	phenocode     TEXT NOT NULL,
	chrom         TEXT NOT NULL,
	pos           INTEGER NOT NULL,
	ref           TEXT NOT NULL,
	alt           TEXT NOT NULL,
	pval          REAL NOT NULL,
	beta          REAL,
	sebeta        REAL,
	maf           REAL,
	rsids         TEXT,
	nearest_genes TEXT
);
CREATE INDEX IF NOT EXISTS hits_phenocode ON hits (phenocode);
`

// Store persists the hits of every phenotype in a SQLite database so that a
// later run can cluster the whole pool.
type Store struct {
	DB *sqlx.DB
}

// Open opens or creates the hit database at path.
func Open(path string) (*Store, error) {
	// URI filenames have to begin with 'file:'
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// Workers of one run write through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create schema: %w", err)
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Put replaces the stored hits of phenocode with hits.
func (s *Store) Put(phenocode string, hits []loci.Hit) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM hits WHERE phenocode = ?", phenocode); err != nil {
		return pfx.Err(err)
	}

	for _, h := range hits {
		h.Phenocode = phenocode
		if _, err := tx.NamedExec(`INSERT INTO hits
			(phenocode, chrom, pos, ref, alt, pval, beta, sebeta, maf, rsids, nearest_genes) VALUES
			(:phenocode, :chrom, :pos, :ref, :alt, :pval, :beta, :sebeta, :maf, :rsids, :nearest_genes)`, h); err != nil {
			return pfx.Err(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// All returns every stored hit in insertion order.
func (s *Store) All() ([]loci.Hit, error) {
	out := make([]loci.Hit, 0)
	if err := s.DB.Select(&out, "SELECT * FROM hits ORDER BY rowid"); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

// Phenocodes returns the phenotypes with at least one stored hit.
func (s *Store) Phenocodes() ([]string, error) {
	out := make([]string, 0)
	if err := s.DB.Select(&out, "SELECT DISTINCT phenocode FROM hits ORDER BY phenocode"); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
