package coverage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
)

// #region layout
const (
	headerRow = 0
	labelRow  = 2 // row 1 holds residues and is not used
	firstData = 3
)
// #endregion layout

// #region options
type options struct {
	vocab    Vocabulary
	recorder diagnostics.Recorder
}

// Option configures Parse.
type Option func(*options)

// WithVocabulary replaces the CDR label set.
func WithVocabulary(v Vocabulary) Option {
	return func(o *options) { o.vocab = v }
}

// WithRecorder routes malformed-row diagnostics to rec.
func WithRecorder(rec diagnostics.Recorder) Option {
	return func(o *options) {
		if rec != nil {
			o.recorder = rec
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{vocab: DefaultVocabulary, recorder: diagnostics.Discard}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
// #endregion options

// #region parse

// ParseFile parses the coverage table at path.
func ParseFile(path string, opts ...Option) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open coverage %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, filepath.Base(path), opts...)
}

// Parse reads a coverage table whose layout is: positions header, residue
// row, region-label row, then one depth row per model. filename supplies the
// antibody and chain and selects the delimiter (.tsv is tab-separated).
func Parse(r io.Reader, filename string, opts ...Option) (Dataset, error) {
	o := buildOptions(opts)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(filename), ".tsv") {
		cr.Comma = '\t'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read coverage %s: %w", filename, err)
	}
	if len(rows) < firstData {
		return Dataset{}, fmt.Errorf("coverage %s: need at least %d rows, got %d", filename, firstData, len(rows))
	}

	positions, err := parsePositions(rows[headerRow])
	if err != nil {
		return Dataset{}, fmt.Errorf("coverage %s: %w", filename, err)
	}
	labels := alignCells(rows[labelRow], len(positions))

	var models []string
	depth := make(map[string][]int)
	for i := firstData; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(row[0])
		if name == "" {
			o.recorder.Record(diagnostics.Diagnostic{Source: filename, Line: i + 1, Reason: "missing model name"})
			continue
		}
		if _, dup := depth[name]; dup {
			o.recorder.Record(diagnostics.Diagnostic{Source: filename, Line: i + 1, Reason: fmt.Sprintf("duplicate model %q", name)})
			continue
		}
		models = append(models, name)
		depth[name] = parseDepths(alignCells(row, len(positions)))
	}

	antibody, chain := IdentifyFile(filename)
	return NewDataset(antibody, chain, positions, labels, models, depth, o.vocab)
}

// #endregion parse

// #region cells

var errNoPositions = errors.New("header has no positions")

func parsePositions(header []string) ([]int, error) {
	// Trailing delimiters leave empty cells at the end of the header.
	end := len(header)
	for end > 1 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}
	if end < 2 {
		return nil, errNoPositions
	}
	out := make([]int, 0, end-1)
	for _, cell := range header[1:end] {
		cell = strings.TrimSpace(cell)
		n, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("position %q: %w", cell, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// alignCells drops the leading label cell, trims, and pads or truncates to n.
func alignCells(row []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i+1 < len(row); i++ {
		out[i] = strings.TrimSpace(row[i+1])
	}
	return out
}

// parseDepths coerces non-numeric cells to 0. Fractional depths truncate;
// NaN, infinities and values outside the int range count as non-numeric.
func parseDepths(cells []string) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		if n, err := strconv.Atoi(c); err == nil {
			out[i] = n
		} else if f, err := strconv.ParseFloat(c, 64); err == nil && inIntRange(f) {
			out[i] = int(f)
		}
	}
	return out
}

func inIntRange(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	// -MinInt is a power of two, so both bounds are exact floats.
	return f >= math.MinInt && f < -math.MinInt
}

// #endregion cells
