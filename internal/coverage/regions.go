package coverage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
)

// #region derive-spans

// DeriveSpans run-length encodes labels and keeps only runs whose label is in
// vocab. Positions are 1-indexed columns, ends inclusive.
func DeriveSpans(labels []string, vocab Vocabulary) []RegionSpan {
	spans := []RegionSpan{}
	if len(labels) == 0 {
		return spans
	}

	current := labels[0]
	start := 1
	for i := 1; i < len(labels); i++ {
		if labels[i] == current {
			continue
		}
		if vocab.Contains(current) {
			spans = append(spans, RegionSpan{Region: current, Start: start, End: i, Kind: SpanKind})
		}
		current = labels[i]
		start = i + 1
	}
	if vocab.Contains(current) {
		spans = append(spans, RegionSpan{Region: current, Start: start, End: len(labels), Kind: SpanKind})
	}
	return spans
}

// #endregion derive-spans

// #region identify

var (
	heavyTags = []string{"heavy", "hc", "vh"}
	lightTags = []string{"light", "lc", "vl", "kappa", "lambda"}
)

// IdentifyFile derives antibody and chain from "{antibody}_{chainTag}.ext".
// Filenames that do not follow the convention yield ChainUnknown.
func IdentifyFile(filename string) (string, Chain) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "_")
	antibody := parts[0]
	if len(parts) < 2 {
		return antibody, ChainUnknown
	}
	tag := strings.ToLower(parts[1])
	for _, kw := range heavyTags {
		if strings.Contains(tag, kw) {
			return antibody, ChainHeavy
		}
	}
	for _, kw := range lightTags {
		if strings.Contains(tag, kw) {
			return antibody, ChainLight
		}
	}
	switch tag {
	case "h":
		return antibody, ChainHeavy
	case "l", "k":
		return antibody, ChainLight
	}
	return antibody, ChainUnknown
}

// #endregion identify

// #region load-all

// IsCoverageFile reports whether name is a coverage table.
func IsCoverageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return true
	}
	return false
}

// LoadAll parses every coverage table in dir, optionally keeping only one
// antibody (case-insensitive). Files that fail to parse are recorded and
// skipped. A missing directory, or a filter that matches nothing, is not-found.
func LoadAll(dir, antibody string, opts ...Option) ([]Dataset, error) {
	o := buildOptions(opts)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ingesterr.NotFound("directory", dir)
		}
		return nil, ingesterr.Wrap("coverage directory "+dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsCoverageFile(e.Name()) {
			continue
		}
		if antibody != "" {
			id, _ := IdentifyFile(e.Name())
			if !strings.EqualFold(id, antibody) {
				continue
			}
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := []Dataset{}
	for _, name := range names {
		ds, err := ParseFile(filepath.Join(dir, name), opts...)
		if err != nil {
			o.recorder.Record(diagnostics.Diagnostic{Source: name, Reason: err.Error()})
			continue
		}
		out = append(out, ds)
	}
	if antibody != "" && len(names) == 0 {
		return nil, ingesterr.NotFound("antibody", antibody)
	}
	return out, nil
}

// #endregion load-all
