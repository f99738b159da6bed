package coverage

import (
	"errors"
	"fmt"
)

// #region chain
// Chain is the antibody chain a coverage file describes.
type Chain string

const (
	ChainHeavy   Chain = "Heavy Chain"
	ChainLight   Chain = "Light Chain"
	ChainUnknown Chain = "Unknown Chain"
)
// #endregion chain

// #region region-span
// SpanKind labels the family of a reported span. Only CDR spans are emitted.
const SpanKind = "CDR"

// RegionSpan is a contiguous run of one CDR label, 1-indexed and inclusive.
type RegionSpan struct {
	Region string `json:"region_name"`
	Start  int    `json:"start_position"`
	End    int    `json:"end_position"`
	Kind   string `json:"kind"`
}
// #endregion region-span

// #region vocabulary
// ErrEmptyVocabulary is returned when no CDR labels are configured.
var ErrEmptyVocabulary = errors.New("coverage: empty CDR vocabulary")

// Vocabulary is the set of region labels that become spans.
type Vocabulary struct {
	labels map[string]struct{}
}

// DefaultVocabulary holds the three canonical CDR labels.
var DefaultVocabulary = Vocabulary{labels: map[string]struct{}{
	"CDR1": {}, "CDR2": {}, "CDR3": {},
}}

// NewVocabulary builds a vocabulary from labels, ignoring blanks.
func NewVocabulary(labels ...string) (Vocabulary, error) {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l != "" {
			set[l] = struct{}{}
		}
	}
	if len(set) == 0 {
		return Vocabulary{}, ErrEmptyVocabulary
	}
	return Vocabulary{labels: set}, nil
}

// Contains reports whether label is a CDR label.
func (v Vocabulary) Contains(label string) bool {
	_, ok := v.labels[label]
	return ok
}
// #endregion vocabulary

// #region dataset
// ErrMisaligned is returned when positions, labels and depth rows differ in length.
var ErrMisaligned = errors.New("coverage: misaligned columns")

// Dataset is one coverage file: positions, their region labels, derived CDR
// spans and per-model depth, all aligned by column.
type Dataset struct {
	AntibodyID   string           `json:"antibody_id"`
	Chain        Chain            `json:"chain_label"`
	Positions    []int            `json:"positions"`
	RegionLabels []string         `json:"region_labels"`
	RegionSpans  []RegionSpan     `json:"region_spans"`
	Depth        map[string][]int `json:"per_model_depth"`
	Models       []string         `json:"models"` // depth keys in file order
}

// NewDataset checks column alignment and derives spans from labels.
func NewDataset(antibody string, chain Chain, positions []int, labels []string, models []string, depth map[string][]int, vocab Vocabulary) (Dataset, error) {
	if len(labels) != len(positions) {
		return Dataset{}, fmt.Errorf("%w: %d labels for %d positions", ErrMisaligned, len(labels), len(positions))
	}
	for _, m := range models {
		row, ok := depth[m]
		if !ok {
			return Dataset{}, fmt.Errorf("%w: model %q has no depth row", ErrMisaligned, m)
		}
		if len(row) != len(positions) {
			return Dataset{}, fmt.Errorf("%w: model %q has %d values for %d positions", ErrMisaligned, m, len(row), len(positions))
		}
	}
	if len(depth) != len(models) {
		return Dataset{}, fmt.Errorf("%w: %d depth rows for %d models", ErrMisaligned, len(depth), len(models))
	}
	return Dataset{
		AntibodyID:   antibody,
		Chain:        chain,
		Positions:    positions,
		RegionLabels: labels,
		RegionSpans:  DeriveSpans(labels, vocab),
		Depth:        depth,
		Models:       models,
	}, nil
}
// #endregion dataset
