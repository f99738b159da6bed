package diagnostics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// #region diagnostic
// Diagnostic describes one malformed row or line that was skipped.
type Diagnostic struct {
	Source    string // file or indicator the row came from
	Line      int    // 1-indexed source line, 0 when unknown
	Reason    string
	CreatedAt time.Time
}
// #endregion diagnostic

// #region recorder
// Recorder receives malformed-row diagnostics. Implementations must be safe
// for concurrent use.
type Recorder interface {
	Record(d Diagnostic)
}

// Discard drops every diagnostic.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Diagnostic) {}
// #endregion recorder

// #region log-recorder
// LogRecorder writes diagnostics to a zap logger at warn level.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder wraps logger. A nil logger records nothing.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(d Diagnostic) {
	r.logger.Warn("skipped malformed row",
		zap.String("source", d.Source),
		zap.Int("line", d.Line),
		zap.String("reason", d.Reason),
	)
}
// #endregion log-recorder

// #region memory
// Memory collects diagnostics in memory.
type Memory struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (m *Memory) Record(d Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, d)
}

// Items returns a copy of the collected diagnostics.
func (m *Memory) Items() []Diagnostic {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Diagnostic, len(m.items))
	copy(out, m.items)
	return out
}
// #endregion memory

// #region multi
// Multi fans each diagnostic out to every non-nil recorder.
func Multi(recs ...Recorder) Recorder {
	var kept multi
	for _, r := range recs {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return kept
}

type multi []Recorder

func (m multi) Record(d Diagnostic) {
	for _, r := range m {
		r.Record(d)
	}
}
// #endregion multi
