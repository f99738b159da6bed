package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/architecture"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/coverage"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/indicator"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/service/servicetest"
)

func newService(t *testing.T) (*Service, *diagnostics.Memory) {
	t.Helper()
	cfg := servicetest.WriteBench(t)
	rec := &diagnostics.Memory{}
	s, err := New(cfg, Options{Recorder: rec, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, rec
}

// #region spectra-tests
func TestListSpectra(t *testing.T) {
	s, _ := newService(t)

	files, err := s.ListSpectra("protease")
	if err != nil {
		t.Fatalf("ListSpectra: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Name != "LysC.mzML" || files[0].Parseable {
		t.Errorf("unexpected first file %+v", files[0])
	}
	if files[1].ID != "trypsin-human-mgf" || !files[1].Parseable || files[1].Size == 0 {
		t.Errorf("unexpected second file %+v", files[1])
	}

	if _, err := s.ListSpectra("tissue"); !ingesterr.IsNotFound(err) {
		t.Errorf("expected not-found for unknown category, got %v", err)
	}
}

func TestPreviewSpectra(t *testing.T) {
	s, _ := newService(t)

	p, err := s.PreviewSpectra("protease", "trypsin-human-mgf", 2)
	if err != nil {
		t.Fatalf("PreviewSpectra: %v", err)
	}
	if len(p.Spectra) != 2 || p.Spectra[0].Title != "t1" || len(p.Spectra[0].Peaks) != 2 {
		t.Errorf("unexpected preview %+v", p.Spectra)
	}
	if p.Raw != servicetest.Files["spectra/protease/Trypsin_Human.mgf"] {
		t.Error("raw text should match the file")
	}

	full, err := s.PreviewSpectra("protease", "trypsin-human-mgf", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(full.Spectra) != 3 {
		t.Errorf("default limit should cover all 3 spectra, got %d", len(full.Spectra))
	}

	if _, err := s.PreviewSpectra("protease", "missing-mgf", 1); !ingesterr.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
	_, err = s.PreviewSpectra("protease", "lysc-mzml", 1)
	var pe *ingesterr.ParseError
	if !errors.As(err, &pe) || !errors.Is(err, errUnsupportedFormat) {
		t.Errorf("expected unsupported format parse error, got %v", err)
	}
}

func TestPreviewSpectra_RemovedAfterSnapshot(t *testing.T) {
	s, _ := newService(t)
	entry, err := s.Catalog().Resolve("protease", "trypsin-human-mgf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := os.Remove(entry.Path); err != nil {
		t.Fatal(err)
	}

	_, err = s.PreviewSpectra("protease", "trypsin-human-mgf", 1)
	var nf *ingesterr.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "file" || nf.Name != "Trypsin_Human.mgf" {
		t.Errorf("expected file not-found, got %v", err)
	}
	var pe *ingesterr.ParseError
	if errors.As(err, &pe) {
		t.Errorf("missing file must not be a parse error: %v", err)
	}
}
// #endregion spectra-tests

// #region coverage-tests
func TestCoverage(t *testing.T) {
	s, _ := newService(t)

	all, err := s.Coverage("")
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(all))
	}

	one, err := s.Coverage("mAb1")
	if err != nil {
		t.Fatalf("Coverage(mAb1): %v", err)
	}
	if len(one) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(one))
	}
	var heavy coverage.Dataset
	for _, ds := range one {
		if ds.Chain == coverage.ChainHeavy {
			heavy = ds
		}
	}
	want := []coverage.RegionSpan{
		{Region: "CDR1", Start: 2, End: 3, Kind: "CDR"},
		{Region: "CDR2", Start: 5, End: 5, Kind: "CDR"},
	}
	if diff := cmp.Diff(want, heavy.RegionSpans); diff != "" {
		t.Errorf("heavy spans (-want +got):\n%s", diff)
	}

	if _, err := s.Coverage("ghost"); !ingesterr.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}
// #endregion coverage-tests

// #region indicator-tests
func TestIndicators_PartialResults(t *testing.T) {
	s, rec := newService(t)
	ctx := context.Background()

	ds, err := s.Indicator(ctx, "noise_peaks")
	if err != nil {
		t.Fatalf("Indicator: %v", err)
	}
	if got := ds.RowsByTool["Casanovo"][0].Values["aa_recall"]; got != 0.875 {
		t.Errorf("aa_recall = %v, want 0.875", got)
	}
	if _, ok := ds.RowsByTool["PointNovo"]; ok {
		t.Error("malformed PointNovo row should be skipped")
	}
	if len(rec.Items()) != 1 {
		t.Errorf("expected 1 diagnostic, got %+v", rec.Items())
	}

	if _, err := s.Indicator(ctx, "unknown"); !ingesterr.IsNotFound(err) {
		t.Errorf("expected not-found for unknown key, got %v", err)
	}

	all, failures := s.Indicators(ctx)
	keys := make([]string, len(all))
	for i, d := range all {
		keys[i] = d.Descriptor.Key
	}
	if diff := cmp.Diff([]string{"noise_peaks", "peptide_length"}, keys); diff != "" {
		t.Errorf("parsed keys (-want +got):\n%s", diff)
	}
	if len(failures) != 2 {
		t.Errorf("expected 2 failures, got %+v", failures)
	}
}

func TestIndicators_SubstituteRegistry(t *testing.T) {
	cfg := servicetest.WriteBench(t)
	reg, err := indicator.NewRegistry(indicator.Descriptor{
		Key: "len", SourceFilename: "peptide_length.csv", ChartKind: indicator.ChartLine,
		XAxis: "peptide_length", Parser: indicator.LengthParser{},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(cfg, Options{Registry: reg})
	if err != nil {
		t.Fatal(err)
	}
	all, failures := s.Indicators(context.Background())
	if len(all) != 1 || len(failures) != 0 {
		t.Errorf("expected exactly the substituted indicator, got %d / %+v", len(all), failures)
	}
}
// #endregion indicator-tests

// #region efficiency-tests
func TestEfficiency(t *testing.T) {
	s, _ := newService(t)
	got, err := s.Efficiency()
	if err != nil {
		t.Fatalf("Efficiency: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Architecture != architecture.Transformer || got[1].Architecture != architecture.RNN {
		t.Errorf("unexpected families %+v", got)
	}
}
// #endregion efficiency-tests

// #region transparency-tests
func TestReparseIsStable(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	a, err := s.Coverage("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Coverage("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("coverage re-parse differs:\n%s", diff)
	}

	i1, _ := s.Indicators(ctx)
	i2, _ := s.Indicators(ctx)
	opts := cmp.Options{
		cmpopts.IgnoreUnexported(indicator.Row{}),
		cmpopts.IgnoreFields(indicator.Descriptor{}, "Parser"),
	}
	if diff := cmp.Diff(i1, i2, opts); diff != "" {
		t.Errorf("indicator re-parse differs:\n%s", diff)
	}
}
// #endregion transparency-tests

func TestNew_InvalidConfig(t *testing.T) {
	cfg := servicetest.WriteBench(t)
	cfg.CDRLabels = nil
	if _, err := New(cfg, Options{}); err == nil {
		t.Error("expected error for empty CDR labels")
	}
}
