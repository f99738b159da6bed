package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region config
// Config holds ingestion settings. Paths are relative to the process cwd
// unless absolute.
type Config struct {
	DataRoot          string   `yaml:"data_root"`
	SpectraCategories []string `yaml:"spectra_categories"`
	PreviewLimit      int      `yaml:"preview_limit"`
	ListenAddr        string   `yaml:"listen_addr"`
	DiagnosticsDB     string   `yaml:"diagnostics_db"`
	CDRLabels         []string `yaml:"cdr_labels"`
	ParseConcurrency  int      `yaml:"parse_concurrency"`
	Verbose           bool     `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataRoot:          "data",
		SpectraCategories: []string{"protease", "species"},
		PreviewLimit:      5,
		ListenAddr:        "localhost:50061",
		DiagnosticsDB:     "",
		CDRLabels:         []string{"CDR1", "CDR2", "CDR3"},
		ParseConcurrency:  4,
	}
}
// #endregion config

// #region load
// Load reads path over the defaults, then applies environment overrides.
// An empty path, or a missing file, leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataRoot = envOr("INGEST_DATA_ROOT", c.DataRoot)
	c.ListenAddr = envOr("INGEST_LISTEN", c.ListenAddr)
	c.DiagnosticsDB = envOr("INGEST_DIAG_DB", c.DiagnosticsDB)
	if v := os.Getenv("INGEST_SPECTRA_CATEGORIES"); v != "" {
		c.SpectraCategories = splitList(v)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
// #endregion load

// #region validate
// Validate rejects settings the ingestion layer cannot run with.
func (c Config) Validate() error {
	if c.DataRoot == "" {
		return errors.New("config: data_root is empty")
	}
	if len(c.SpectraCategories) == 0 {
		return errors.New("config: spectra_categories is empty")
	}
	if c.PreviewLimit <= 0 {
		return fmt.Errorf("config: preview_limit must be positive, got %d", c.PreviewLimit)
	}
	if c.ParseConcurrency <= 0 {
		return fmt.Errorf("config: parse_concurrency must be positive, got %d", c.ParseConcurrency)
	}
	if len(c.CDRLabels) == 0 {
		return errors.New("config: cdr_labels is empty")
	}
	return nil
}
// #endregion validate

// #region layout
// SpectraDir is the parent of the spectral category directories.
func (c Config) SpectraDir() string { return filepath.Join(c.DataRoot, "spectra") }

// CoverageDir holds one table per antibody chain.
func (c Config) CoverageDir() string { return filepath.Join(c.DataRoot, "coverage") }

// IndicatorDir holds one table per registered indicator.
func (c Config) IndicatorDir() string { return filepath.Join(c.DataRoot, "indicators") }

// EfficiencyFile is the throughput table.
func (c Config) EfficiencyFile() string { return filepath.Join(c.DataRoot, "efficiency.csv") }
// #endregion layout
