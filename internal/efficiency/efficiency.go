package efficiency

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/architecture"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/lines"
)

// #region record
// Record is one algorithm's measured throughput.
type Record struct {
	Algorithm    string              `json:"algorithm_name"`
	Throughput   float64             `json:"throughput_spectra_per_second"`
	Architecture architecture.Family `json:"architecture_family"`
}
// #endregion record

// #region parse

// Parse reads an "algorithm,throughput" table with a header line. Rows that
// are short or carry a non-numeric throughput are recorded and skipped.
func Parse(r io.Reader, source string, rec diagnostics.Recorder) ([]Record, error) {
	if rec == nil {
		rec = diagnostics.Discard
	}
	out := []Record{}
	lr := lines.NewReader(r, 0)
	for lr.Next() {
		ln := lr.Line()
		if ln.No == 1 {
			continue
		}
		if ln.TooLong {
			rec.Record(diagnostics.Diagnostic{Source: source, Line: ln.No, Reason: "line too long"})
			continue
		}
		line := strings.TrimSpace(ln.Text)
		if line == "" {
			continue
		}
		cells := strings.Split(line, ",")
		if len(cells) < 2 {
			rec.Record(diagnostics.Diagnostic{Source: source, Line: ln.No, Reason: "expected 2 columns"})
			continue
		}
		name := strings.TrimSpace(cells[0])
		tput, err := strconv.ParseFloat(strings.TrimSpace(cells[1]), 64)
		if name == "" || err != nil {
			rec.Record(diagnostics.Diagnostic{Source: source, Line: ln.No, Reason: fmt.Sprintf("bad row %q", line)})
			continue
		}
		out = append(out, Record{
			Algorithm:    name,
			Throughput:   tput,
			Architecture: architecture.Classify(name),
		})
	}
	if err := lr.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return out, nil
}

// ParseFile parses the efficiency table at path. A missing file is not-found.
func ParseFile(path string, rec diagnostics.Recorder) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ingesterr.NotFound("file", filepath.Base(path))
		}
		return nil, ingesterr.Wrap("efficiency", err)
	}
	defer f.Close()

	records, err := Parse(f, filepath.Base(path), rec)
	if err != nil {
		return nil, ingesterr.Wrap("efficiency", err)
	}
	return records, nil
}

// #endregion parse
