package indicator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/lines"
)

// #region config
const (
	minColumns         = 3
	defaultConcurrency = 4
)

// Parser reads indicator tables from Dir using the descriptors in Registry.
type Parser struct {
	Registry    *Registry
	Dir         string
	Recorder    diagnostics.Recorder
	Logger      *zap.Logger
	Concurrency int // ParseAll fan-out; <= 0 uses a default
	MaxLineLen  int // longer rows are recorded and skipped; <= 0 uses lines.DefaultMaxLen
}

// Failure records why one indicator was excluded from a ParseAll result.
type Failure struct {
	Key string
	Err error
}
// #endregion config

// #region parse

// Parse reads and maps the indicator registered under key.
func (p *Parser) Parse(ctx context.Context, key string) (Dataset, error) {
	desc, ok := p.Registry.Lookup(key)
	if !ok {
		return Dataset{}, ingesterr.NotFound("indicator", key)
	}

	path := filepath.Join(p.Dir, desc.SourceFilename)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Dataset{}, ingesterr.NotFound("file", desc.SourceFilename)
		}
		return Dataset{}, ingesterr.Wrap("indicator "+key, err)
	}
	defer f.Close()

	ds, err := p.parseRows(ctx, desc, f)
	if err != nil {
		return Dataset{}, ingesterr.Wrap("indicator "+key, err)
	}
	return ds, nil
}

func (p *Parser) parseRows(ctx context.Context, desc Descriptor, r io.Reader) (Dataset, error) {
	rec := p.recorder()
	ds := Dataset{
		Descriptor: desc,
		Fields:     desc.Parser.Fields(),
		Tools:      []string{},
		RowsByTool: make(map[string][]Row),
	}

	lr := lines.NewReader(r, p.MaxLineLen)
	for lr.Next() {
		ln := lr.Line()
		if ln.No == 1 {
			continue // header
		}
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		if ln.TooLong {
			rec.Record(diagnostics.Diagnostic{Source: desc.SourceFilename, Line: ln.No, Reason: "line too long"})
			continue
		}

		line := strings.TrimSpace(ln.Text)
		if line == "" {
			continue
		}
		cells := strings.Split(line, ",")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if len(cells) < minColumns {
			rec.Record(diagnostics.Diagnostic{
				Source: desc.SourceFilename, Line: ln.No,
				Reason: shortRowError{want: minColumns, got: len(cells)}.Error(),
			})
			continue
		}

		row, err := desc.Parser.ParseRow(cells)
		if err != nil {
			rec.Record(diagnostics.Diagnostic{Source: desc.SourceFilename, Line: ln.No, Reason: err.Error()})
			continue
		}
		row = row.Normalized()

		if _, seen := ds.RowsByTool[row.Tool]; !seen {
			ds.Tools = append(ds.Tools, row.Tool)
		}
		ds.RowsByTool[row.Tool] = append(ds.RowsByTool[row.Tool], row)
	}
	if err := lr.Err(); err != nil {
		return Dataset{}, fmt.Errorf("read %s: %w", desc.SourceFilename, err)
	}
	return ds, nil
}

// #endregion parse

// #region parse-all

// ParseAll parses every registered indicator independently. Indicators that
// fail are logged and returned as failures; the rest come back in registry order.
func (p *Parser) ParseAll(ctx context.Context) ([]Dataset, []Failure) {
	descs := p.Registry.Descriptors()
	results := make([]*Dataset, len(descs))
	errs := make([]error, len(descs))

	limit := p.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range descs {
		g.Go(func() error {
			ds, err := p.Parse(gctx, d.Key)
			if err != nil {
				// Per-indicator errors never cancel the batch.
				errs[i] = err
				return nil
			}
			results[i] = &ds
			return nil
		})
	}
	_ = g.Wait()

	logger := p.logger()
	out := []Dataset{}
	var failures []Failure
	for i, d := range descs {
		if errs[i] != nil {
			logger.Warn("indicator excluded", zap.String("indicator", d.Key), zap.Error(errs[i]))
			failures = append(failures, Failure{Key: d.Key, Err: errs[i]})
			continue
		}
		out = append(out, *results[i])
	}
	return out, failures
}

// #endregion parse-all

// #region helpers
func (p *Parser) recorder() diagnostics.Recorder {
	if p.Recorder == nil {
		return diagnostics.Discard
	}
	return p.Recorder
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
// #endregion helpers
