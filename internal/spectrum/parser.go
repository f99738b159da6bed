package spectrum

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/lines"
)

// #region markers
const (
	beginIons = "BEGIN IONS"
	endIons   = "END IONS"
)

var ignoredPrefixes = []string{"SCANS=", "RTINSECONDS="}
// #endregion markers

// #region scanner
// Scanner reads spectra from MGF text one block at a time. It is not
// restartable: once Scan returns false the sequence is exhausted.
type Scanner struct {
	src     *lines.Reader
	max     int
	emitted int
	current Spectrum
	err     error
	done    bool
}

// NewScanner returns a Scanner over r. max <= 0 means no limit.
func NewScanner(r io.Reader, max int) *Scanner {
	return &Scanner{src: lines.NewReader(r, lines.DefaultMaxLen), max: max}
}

// Scan advances to the next closed spectrum.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	if s.max > 0 && s.emitted >= s.max {
		s.done = true
		return false
	}

	var open *Spectrum
	for s.src.Next() {
		ln := s.src.Line()
		if ln.TooLong {
			continue // cannot be a marker, header or peak
		}
		line := strings.TrimSpace(ln.Text)

		if open == nil {
			if line == beginIons {
				open = &Spectrum{Peaks: []Peak{}}
			}
			continue
		}

		if line == endIons {
			s.current = *open
			s.emitted++
			return true
		}
		applyLine(open, line)
	}
	if err := s.src.Err(); err != nil {
		s.err = fmt.Errorf("read spectra: %w", err)
	}
	s.done = true
	return false
}

// Spectrum returns the spectrum produced by the last successful Scan.
func (s *Scanner) Spectrum() Spectrum {
	return s.current
}

// Err returns the first read error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// All adapts the scanner to a range-over-func sequence.
func (s *Scanner) All() iter.Seq[Spectrum] {
	return func(yield func(Spectrum) bool) {
		for s.Scan() {
			if !yield(s.Spectrum()) {
				return
			}
		}
	}
}
// #endregion scanner

// #region line-handling
func applyLine(sp *Spectrum, line string) {
	if v, ok := strings.CutPrefix(line, "TITLE="); ok {
		sp.Title = v
		return
	}
	if v, ok := strings.CutPrefix(line, "PEPMASS="); ok {
		sp.PrecursorMass = v
		return
	}
	if v, ok := strings.CutPrefix(line, "CHARGE="); ok {
		sp.Charge = v
		return
	}
	if v, ok := strings.CutPrefix(line, "SEQ="); ok {
		sp.Sequence = v
		return
	}
	for _, p := range ignoredPrefixes {
		if strings.HasPrefix(line, p) {
			return
		}
	}
	if peak, ok := parsePeak(line); ok {
		sp.Peaks = append(sp.Peaks, peak)
	}
}

// parsePeak accepts a line only if its first two tokens are both floats.
func parsePeak(line string) (Peak, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Peak{}, false
	}
	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Peak{}, false
	}
	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Peak{}, false
	}
	return Peak{MZ: mz, Intensity: intensity}, true
}
// #endregion line-handling

// #region parse

// Parse collects up to max spectra from r (max <= 0: all of them).
func Parse(r io.Reader, max int) ([]Spectrum, error) {
	sc := NewScanner(r, max)
	out := []Spectrum{}
	for sp := range sc.All() {
		out = append(out, sp)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadPreview reads the file at path once and returns its first n spectra
// alongside the raw text.
func ReadPreview(path string, n int) (Preview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preview{}, fmt.Errorf("read spectra %s: %w", path, err)
	}
	spectra, err := Parse(bytes.NewReader(data), n)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Spectra: spectra, Raw: string(data)}, nil
}

// #endregion parse

// #region formats

// IsSpectralFile reports whether name has a parseable spectral extension.
func IsSpectralFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".mgf")
}

// #endregion formats
