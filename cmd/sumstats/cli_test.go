package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/config"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func readGzip(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// setup writes two phenotypes: t2d split across two files, and cad in one.
func setup(t *testing.T) (dir string) {
	t.Helper()

	logger = zap.NewNop()
	cfg = config.Default()
	cfg.NumWorkers = 2
	force = false
	onlyPhenos = nil

	dir = t.TempDir()
	writeLines(t, filepath.Join(dir, "t2d.chr2.tsv"),
		"chrom\tpos\tref\talt\tpval\tbeta\tnum_cases",
		"2\t1000\tA\tG\t1e-9\t0.5\t100",
		"X\t500\tC\tT\t0.5\t0.01\t100",
	)
	writeLines(t, filepath.Join(dir, "t2d.chr1.tsv"),
		"chrom\tpos\tref\talt\tpval\tbeta\tnum_cases",
		"chr1\t100\tA\tT\t1e-8\t0.2\t100",
		"chr1\t100\tA\tC\t0.3\t0.1\t100",
		"chr1\t400000\tG\tA\t1e-7\t0.3\t100",
	)
	writeLines(t, filepath.Join(dir, "cad.tsv"),
		"CHR BP ALLELE0 ALLELE1 P",
		"1 200 A G 1e-10",
		"3 100 A G 0.4",
	)

	phenos := []map[string]interface{}{
		{"phenocode": "t2d", "assoc_files": []string{filepath.Join(dir, "t2d.chr2.tsv"), filepath.Join(dir, "t2d.chr1.tsv")}},
		{"phenocode": "cad", "assoc_files": []string{filepath.Join(dir, "cad.tsv")}},
	}
	data, err := json.Marshal(phenos)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pheno-list.json"), data, 0o644))

	phenolistPath = filepath.Join(dir, "pheno-list.json")
	outDir = filepath.Join(dir, "out")
	hitsDBPath = filepath.Join(dir, "hits.db")

	return dir
}

func TestParseAndLoci(t *testing.T) {
	setup(t)

	require.NoError(t, runParse(&cobra.Command{}, nil))

	lines := readGzip(t, filepath.Join(outDir, "t2d.tsv.gz"))
	assert.Equal(t, []string{
		"chrom\tpos\tref\talt\tpval\tbeta",
		"1\t100\tA\tC\t0.3\t0.1",
		"1\t100\tA\tT\t1e-08\t0.2",
		"1\t400000\tG\tA\t1e-07\t0.3",
		"2\t1000\tA\tG\t1e-09\t0.5",
		"X\t500\tC\tT\t0.5\t0.01",
	}, lines)

	data, err := os.ReadFile(filepath.Join(outDir, "t2d.json"))
	require.NoError(t, err)
	var s struct {
		Phenocode   string                 `json:"phenocode"`
		NumVariants int                    `json:"num_variants"`
		NumHits     int                    `json:"num_hits"`
		Info        map[string]interface{} `json:"info"`
	}
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "t2d", s.Phenocode)
	assert.Equal(t, 5, s.NumVariants)
	// 1:100 masks 1:400000 within the phenotype.
	assert.Equal(t, 2, s.NumHits)
	assert.Equal(t, float64(100), s.Info["num_cases"])

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	lociTSVPath = "-"
	lociJSONPath = ""
	defer func() { lociTSVPath = "" }()
	require.NoError(t, runLoci(cmd, nil))

	tsv := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, tsv, 3)
	assert.True(t, strings.HasPrefix(tsv[1], "cad\t1\t200\t"), tsv[1])
	assert.True(t, strings.HasPrefix(tsv[2], "t2d\t2\t1000\t"), tsv[2])
}

func TestParseSkipsUpToDate(t *testing.T) {
	setup(t)

	require.NoError(t, runParse(&cobra.Command{}, nil))
	first, err := os.Stat(filepath.Join(outDir, "cad.tsv.gz"))
	require.NoError(t, err)

	require.NoError(t, runParse(&cobra.Command{}, nil))
	second, err := os.Stat(filepath.Join(outDir, "cad.tsv.gz"))
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())

	force = true
	defer func() { force = false }()
	onlyPhenos = []string{"cad"}
	defer func() { onlyPhenos = nil }()
	require.NoError(t, runParse(&cobra.Command{}, nil))
	third, err := os.Stat(filepath.Join(outDir, "cad.tsv.gz"))
	require.NoError(t, err)
	assert.False(t, third.ModTime().Before(second.ModTime()))
}

func TestParseReportsFailingPhenotype(t *testing.T) {
	dir := setup(t)
	writeLines(t, filepath.Join(dir, "cad.tsv"),
		"CHR BP ALLELE0 ALLELE1 P",
		"2 200 A G 1e-10",
		"1 100 A G 0.4",
	)

	err := runParse(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"cad"`)

	var orderErr *sumstats.OrderError
	assert.True(t, errors.As(err, &orderErr))

	_, statErr := os.Stat(filepath.Join(outDir, "cad.tsv.gz"))
	assert.True(t, os.IsNotExist(statErr), "a failed phenotype leaves no output")
}

func TestInfo(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runInfo(cmd, nil))

	var got map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, float64(100), got["t2d"]["num_cases"])
	assert.Empty(t, got["cad"])
}

func TestVersion(t *testing.T) {
	logger = zap.NewNop()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, versionCmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), "was built with")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteRowReportsWriteErrors(t *testing.T) {
	err := writeRow(failingWriter{}, []string{"chrom", "pos"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	var buf bytes.Buffer
	require.NoError(t, writeRow(&buf, []string{"chrom", "pos"}))
	assert.Equal(t, "chrom\tpos\n", buf.String())
}
