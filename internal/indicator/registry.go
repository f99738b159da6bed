package indicator

import "fmt"

// #region registry
// Registry is an immutable, ordered set of descriptors. Build it once at
// start-up and share it; it is safe for concurrent readers.
type Registry struct {
	order []string
	byKey map[string]Descriptor
}

// NewRegistry validates descs and returns a registry in the given order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if d.Key == "" {
			return nil, errEmptyKey
		}
		if d.Parser == nil {
			return nil, fmt.Errorf("%w: %s", errNoParser, d.Key)
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateKey, d.Key)
		}
		r.order = append(r.order, d.Key)
		r.byKey[d.Key] = d
	}
	return r, nil
}

// Lookup returns the descriptor registered under key.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.order))
	for i, k := range r.order {
		out[i] = r.byKey[k]
	}
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.order)
}
// #endregion registry

// #region defaults

// DefaultDescriptors are the robustness indicators shipped with the benchmark.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Key:            "noise_peaks",
			SourceFilename: "noise_peaks.csv",
			DisplayName:    "Noise Peak Robustness",
			Description:    "Recall as random noise peaks are injected into each spectrum.",
			ChartKind:      ChartHeatmap,
			XAxis:          "noise_factor",
			YAxis:          "tool",
			Parser:         NoiseParser{},
		},
		{
			Key:            "missing_cleavages",
			SourceFilename: "missing_cleavages.csv",
			DisplayName:    "Missing Fragmentation",
			Description:    "Recall and precision by number of missing backbone cleavages.",
			ChartKind:      ChartLine,
			XAxis:          "missing_cleavages",
			YAxis:          "peptide_recall",
			Parser:         CleavageParser{},
		},
		{
			Key:            "peptide_length",
			SourceFilename: "peptide_length.csv",
			DisplayName:    "Peptide Length",
			Description:    "Recall by ground-truth peptide length.",
			ChartKind:      ChartLine,
			XAxis:          "peptide_length",
			YAxis:          "peptide_recall",
			Parser:         LengthParser{},
		},
		{
			Key:            "precision_recall",
			SourceFilename: "precision_recall.csv",
			DisplayName:    "Precision-Recall",
			Description:    "Amino-acid precision against recall across score thresholds.",
			ChartKind:      ChartLine,
			XAxis:          "aa_recall",
			Parser:         ThresholdParser{},
		},
	}
}

// DefaultRegistry returns a registry of DefaultDescriptors.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultDescriptors()...)
	if err != nil {
		panic(err)
	}
	return r
}

// #endregion defaults
