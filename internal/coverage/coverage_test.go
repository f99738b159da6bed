package coverage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
)

// #region fixtures
const sampleTable = `position,1,2,3,4,5
residue,E,V,Q,L,V
region,FR1,CDR1,CDR1,FR2,CDR2
Casanovo,10,12,n/a,8,0
PointNovo,3,4,5,6,7
`
// #endregion fixtures

// #region derive-spans-tests
func TestDeriveSpans(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   []RegionSpan
	}{
		{
			"reference-example",
			[]string{"FR1", "CDR1", "CDR1", "FR2", "CDR2"},
			[]RegionSpan{
				{Region: "CDR1", Start: 2, End: 3, Kind: "CDR"},
				{Region: "CDR2", Start: 5, End: 5, Kind: "CDR"},
			},
		},
		{"empty", nil, []RegionSpan{}},
		{"all-framework", []string{"FR1", "FR1", "FR2"}, []RegionSpan{}},
		{
			"leading-and-trailing-cdr",
			[]string{"CDR1", "CDR1", "FR2", "FR2", "CDR3", "CDR3", "CDR3"},
			[]RegionSpan{
				{Region: "CDR1", Start: 1, End: 2, Kind: "CDR"},
				{Region: "CDR3", Start: 5, End: 7, Kind: "CDR"},
			},
		},
		{
			"adjacent-cdrs",
			[]string{"CDR1", "CDR2", "CDR2", "CDR3"},
			[]RegionSpan{
				{Region: "CDR1", Start: 1, End: 1, Kind: "CDR"},
				{Region: "CDR2", Start: 2, End: 3, Kind: "CDR"},
				{Region: "CDR3", Start: 4, End: 4, Kind: "CDR"},
			},
		},
		{
			"repeated-label-after-gap",
			[]string{"CDR2", "FR3", "CDR2"},
			[]RegionSpan{
				{Region: "CDR2", Start: 1, End: 1, Kind: "CDR"},
				{Region: "CDR2", Start: 3, End: 3, Kind: "CDR"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSpans(tt.labels, DefaultVocabulary)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeriveSpans_Properties(t *testing.T) {
	labels := []string{"FR1", "CDR1", "CDR1", "FR2", "FR2", "CDR2", "CDR2", "FR3", "CDR3", "FR4"}
	first := DeriveSpans(labels, DefaultVocabulary)
	second := DeriveSpans(labels, DefaultVocabulary)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("not idempotent:\n%s", diff)
	}

	prevEnd := 0
	for _, sp := range first {
		if sp.Start <= prevEnd {
			t.Errorf("span %+v overlaps or is out of order (prev end %d)", sp, prevEnd)
		}
		if sp.End < sp.Start {
			t.Errorf("span %+v ends before it starts", sp)
		}
		for p := sp.Start; p <= sp.End; p++ {
			if labels[p-1] != sp.Region {
				t.Errorf("position %d labelled %q inside span %+v", p, labels[p-1], sp)
			}
		}
		prevEnd = sp.End
	}
}

func TestVocabulary(t *testing.T) {
	if _, err := NewVocabulary("", ""); !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
	}
	v, err := NewVocabulary("H1", "H2", "H3")
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	got := DeriveSpans([]string{"FR1", "H1", "H1", "CDR1"}, v)
	want := []RegionSpan{{Region: "H1", Start: 2, End: 3, Kind: "CDR"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("custom vocabulary spans (-want +got):\n%s", diff)
	}
}
// #endregion derive-spans-tests

// #region parse-tests
func TestParse_Sample(t *testing.T) {
	var rec diagnostics.Memory
	ds, err := Parse(strings.NewReader(sampleTable), "mAb1_HeavyChain.csv", WithRecorder(&rec))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ds.AntibodyID != "mAb1" || ds.Chain != ChainHeavy {
		t.Errorf("identity: got %q %q", ds.AntibodyID, ds.Chain)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, ds.Positions); diff != "" {
		t.Errorf("positions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FR1", "CDR1", "CDR1", "FR2", "CDR2"}, ds.RegionLabels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	wantDepth := map[string][]int{
		"Casanovo":  {10, 12, 0, 8, 0},
		"PointNovo": {3, 4, 5, 6, 7},
	}
	if diff := cmp.Diff(wantDepth, ds.Depth); diff != "" {
		t.Errorf("depth (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Casanovo", "PointNovo"}, ds.Models); diff != "" {
		t.Errorf("models (-want +got):\n%s", diff)
	}
	if len(ds.RegionSpans) != 2 {
		t.Errorf("expected 2 spans, got %d", len(ds.RegionSpans))
	}
	if len(rec.Items()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", rec.Items())
	}
}

func TestParse_RaggedAndBadRows(t *testing.T) {
	input := "pos\t1\t2\t3\n" +
		"res\tA\tB\tC\n" +
		"region\tCDR3\tCDR3\n" +
		"ModelA\t1\n" +
		"\t4\t4\t4\n" +
		"ModelA\t9\t9\t9\n" +
		"ModelB\t1\t2\t3\t4\n"

	var rec diagnostics.Memory
	ds, err := Parse(strings.NewReader(input), "x_light.tsv", WithRecorder(&rec))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ds.Chain != ChainLight {
		t.Errorf("chain: got %q", ds.Chain)
	}
	if diff := cmp.Diff([]string{"CDR3", "CDR3", ""}, ds.RegionLabels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 0, 0}, ds.Depth["ModelA"]); diff != "" {
		t.Errorf("padded depth (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ds.Depth["ModelB"]); diff != "" {
		t.Errorf("truncated depth (-want +got):\n%s", diff)
	}
	if len(rec.Items()) != 2 {
		t.Errorf("expected 2 diagnostics (blank name, duplicate), got %+v", rec.Items())
	}
}

func TestParseDepths(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  []int
	}{
		{"ints", []string{"3", "0", "-2"}, []int{3, 0, -2}},
		{"fractional", []string{"2.9", "1e3"}, []int{2, 1000}},
		{"non-numeric", []string{"n/a", "", "x1"}, []int{0, 0, 0}},
		{"nan-and-inf", []string{"NaN", "Inf", "-Inf", "+inf"}, []int{0, 0, 0, 0}},
		{"out-of-range", []string{"1e30", "-1e30", "9.3e18"}, []int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseDepths(tt.cells)); diff != "" {
				t.Errorf("depths (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_NonFiniteDepths(t *testing.T) {
	input := "pos,1,2,3\nres,A,B,C\nregion,CDR1,CDR1,FR1\nM,NaN,Inf,1e30\n"
	ds, err := Parse(strings.NewReader(input), "m_heavy.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]int{0, 0, 0}, ds.Depth["M"]); diff != "" {
		t.Errorf("depth (-want +got):\n%s", diff)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too-few-rows", "pos,1,2\nres,A,B\n"},
		{"no-positions", "pos\nres\nregion\n"},
		{"bad-position", "pos,1,x\nres,A,B\nregion,FR1,FR1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input), "a_heavy.csv"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewDataset_Misaligned(t *testing.T) {
	_, err := NewDataset("a", ChainHeavy, []int{1, 2}, []string{"FR1"}, nil, nil, DefaultVocabulary)
	if !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
	_, err = NewDataset("a", ChainHeavy, []int{1, 2}, []string{"FR1", "FR1"},
		[]string{"m"}, map[string][]int{"m": {1}}, DefaultVocabulary)
	if !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned for short depth row, got %v", err)
	}
}
// #endregion parse-tests

// #region identify-tests
func TestIdentifyFile(t *testing.T) {
	tests := []struct {
		filename     string
		wantAntibody string
		wantChain    Chain
	}{
		{"Herceptin_HeavyChain.csv", "Herceptin", ChainHeavy},
		{"Herceptin_LightChain.csv", "Herceptin", ChainLight},
		{"mAb2_HC.tsv", "mAb2", ChainHeavy},
		{"mAb2_kappa.csv", "mAb2", ChainLight},
		{"mAb3_L.csv", "mAb3", ChainLight},
		{"noseparator.csv", "noseparator", ChainUnknown},
		{"mAb4_other.csv", "mAb4", ChainUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ab, chain := IdentifyFile(tt.filename)
			if ab != tt.wantAntibody || chain != tt.wantChain {
				t.Errorf("got (%q, %q), want (%q, %q)", ab, chain, tt.wantAntibody, tt.wantChain)
			}
		})
	}
}
// #endregion identify-tests

// #region load-all-tests
func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("mAb1_heavy.csv", sampleTable)
	write("mAb1_light.csv", sampleTable)
	write("mAb2_heavy.csv", sampleTable)
	write("broken_heavy.csv", "only one row\n")
	write("notes.txt", "ignored")

	var rec diagnostics.Memory
	all, err := LoadAll(dir, "", WithRecorder(&rec))
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 datasets, got %d", len(all))
	}
	if len(rec.Items()) != 1 || rec.Items()[0].Source != "broken_heavy.csv" {
		t.Errorf("expected one diagnostic for broken file, got %+v", rec.Items())
	}

	only, err := LoadAll(dir, "MAB1")
	if err != nil {
		t.Fatalf("LoadAll filtered: %v", err)
	}
	if len(only) != 2 {
		t.Errorf("expected 2 datasets for mAb1, got %d", len(only))
	}

	var nf *ingesterr.NotFoundError
	if _, err := LoadAll(dir, "ghost"); !errors.As(err, &nf) || nf.Kind != "antibody" {
		t.Errorf("expected antibody not-found, got %v", err)
	}
	if _, err := LoadAll(filepath.Join(dir, "missing"), ""); !errors.As(err, &nf) || nf.Kind != "directory" {
		t.Errorf("expected directory not-found, got %v", err)
	}
}
// #endregion load-all-tests
