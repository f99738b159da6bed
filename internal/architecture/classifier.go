package architecture

import "strings"

// #region families

// Family is a model-architecture label.
type Family string

const (
	Transformer Family = "Transformer"
	PointNet    Family = "PointNet"
	CNN         Family = "CNN"
	RNN         Family = "RNN"
	Unknown     Family = "Unknown"
)

// #endregion families

// #region keywords

// Keywords are matched as lowercase substrings of the algorithm name.
var transformerKeywords = []string{
	"transformer", "casanovo", "instanovo", "contranovo", "adanovo",
	"primenovo", "helixnovo", "spectralis", "bert", "attention",
}

var pointNetKeywords = []string{
	"pointnet", "pointnovo",
}

var cnnKeywords = []string{
	"cnn", "conv", "smsnet", "pepnet",
}

var rnnKeywords = []string{
	"rnn", "lstm", "gru", "deepnovo", "recurrent",
}

// priority is evaluated top to bottom; the first family with a match wins.
var priority = []struct {
	family   Family
	keywords []string
}{
	{Transformer, transformerKeywords},
	{PointNet, pointNetKeywords},
	{CNN, cnnKeywords},
	{RNN, rnnKeywords},
}

// #endregion keywords

// #region classify

// Classify maps a free-text algorithm name to its architecture family via
// keyword heuristics. It never fails; unmatched names are Unknown.
func Classify(name string) Family {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return Unknown
	}
	for _, p := range priority {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.family
			}
		}
	}
	return Unknown
}

// Families returns the candidate labels in priority order, Unknown last.
func Families() []Family {
	out := make([]Family, 0, len(priority)+1)
	for _, p := range priority {
		out = append(out, p.family)
	}
	return append(out, Unknown)
}

// #endregion classify
