package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/catalog"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/config"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/coverage"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/efficiency"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/indicator"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/spectrum"
)

// #region service-struct
// Service is the entry point the API layer calls. It holds only read-only
// state (config, registry, catalog snapshot); every call re-reads its files.
type Service struct {
	cfg      config.Config
	registry *indicator.Registry
	catalog  *catalog.Catalog
	vocab    coverage.Vocabulary
	recorder diagnostics.Recorder
	logger   *zap.Logger
}

// Options are the collaborators New wires in. Zero values get defaults.
type Options struct {
	Registry *indicator.Registry
	Recorder diagnostics.Recorder
	Logger   *zap.Logger
}
// #endregion service-struct

// #region constructor
// New builds the catalog and vocabulary from cfg.
func New(cfg config.Config, opts Options) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = indicator.DefaultRegistry()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = diagnostics.NewLogRecorder(logger)
	}

	vocab, err := coverage.NewVocabulary(cfg.CDRLabels...)
	if err != nil {
		return nil, fmt.Errorf("cdr vocabulary: %w", err)
	}
	cat, err := catalog.Build(cfg.SpectraDir(), cfg.SpectraCategories, catalog.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	logger.Info("catalog ready",
		zap.String("root", cfg.SpectraDir()),
		zap.Int("files", len(cat.ListAll())),
		zap.Int("collisions", len(cat.Collisions())),
	)

	return &Service{
		cfg:      cfg,
		registry: reg,
		catalog:  cat,
		vocab:    vocab,
		recorder: rec,
		logger:   logger,
	}, nil
}

// WithRecorder returns a shallow copy that reports diagnostics to rec as well.
func (s *Service) WithRecorder(rec diagnostics.Recorder) *Service {
	cp := *s
	cp.recorder = diagnostics.Multi(s.recorder, rec)
	return &cp
}

// Registry exposes the indicator registry.
func (s *Service) Registry() *indicator.Registry { return s.registry }

// Catalog exposes the spectral file catalog.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }
// #endregion constructor

// #region spectra
var errUnsupportedFormat = errors.New("unsupported spectral format")

// SpectrumFile is one listing row.
type SpectrumFile struct {
	catalog.Entry
	Parseable bool `json:"parseable"`
}

// ListSpectra lists a category's spectral files.
func (s *Service) ListSpectra(category string) ([]SpectrumFile, error) {
	entries, err := s.catalog.List(category)
	if err != nil {
		return nil, err
	}
	out := make([]SpectrumFile, len(entries))
	for i, e := range entries {
		out[i] = SpectrumFile{Entry: e, Parseable: spectrum.IsSpectralFile(e.Name)}
	}
	return out, nil
}

// PreviewSpectra returns the first n spectra (n <= 0: configured limit) and
// the raw text of one file.
func (s *Service) PreviewSpectra(category, id string, n int) (spectrum.Preview, error) {
	entry, err := s.catalog.Resolve(category, id)
	if err != nil {
		return spectrum.Preview{}, err
	}
	if !spectrum.IsSpectralFile(entry.Name) {
		return spectrum.Preview{}, ingesterr.Wrap("spectrum "+entry.Name, errUnsupportedFormat)
	}
	if n <= 0 {
		n = s.cfg.PreviewLimit
	}
	p, err := spectrum.ReadPreview(entry.Path, n)
	if errors.Is(err, fs.ErrNotExist) {
		// Removed from disk after the catalog snapshot was taken.
		return spectrum.Preview{}, ingesterr.NotFound("file", entry.Name)
	}
	if err != nil {
		return spectrum.Preview{}, ingesterr.Wrap("spectrum "+entry.Name, err)
	}
	return p, nil
}
// #endregion spectra

// #region coverage
// Coverage parses every coverage table, or only those of one antibody.
func (s *Service) Coverage(antibody string) ([]coverage.Dataset, error) {
	return coverage.LoadAll(s.cfg.CoverageDir(), antibody,
		coverage.WithVocabulary(s.vocab),
		coverage.WithRecorder(s.recorder),
	)
}
// #endregion coverage

// #region indicators
func (s *Service) indicatorParser() *indicator.Parser {
	return &indicator.Parser{
		Registry:    s.registry,
		Dir:         s.cfg.IndicatorDir(),
		Recorder:    s.recorder,
		Logger:      s.logger,
		Concurrency: s.cfg.ParseConcurrency,
	}
}

// Indicator parses one registered indicator.
func (s *Service) Indicator(ctx context.Context, key string) (indicator.Dataset, error) {
	return s.indicatorParser().Parse(ctx, key)
}

// Indicators parses the whole registry; failed indicators are left out.
func (s *Service) Indicators(ctx context.Context) ([]indicator.Dataset, []indicator.Failure) {
	return s.indicatorParser().ParseAll(ctx)
}
// #endregion indicators

// #region efficiency
// Efficiency parses the throughput table.
func (s *Service) Efficiency() ([]efficiency.Record, error) {
	return efficiency.ParseFile(s.cfg.EfficiencyFile(), s.recorder)
}
// #endregion efficiency
