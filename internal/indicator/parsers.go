package indicator

import (
	"fmt"
	"strconv"
)

// #region noise
// NoiseParser maps noise-peak robustness rows:
// tool, noise_factor, aa_recall, peptide_recall.
type NoiseParser struct{}

func (NoiseParser) Fields() []string {
	return []string{"noise_factor", "aa_recall", "peptide_recall"}
}

func (NoiseParser) ParseRow(cells []string) (Row, error) {
	if err := need(cells, 4); err != nil {
		return Row{}, err
	}
	noise, err := floatCell(cells, 1, "noise_factor")
	if err != nil {
		return Row{}, err
	}
	return recallRow(cells[0], cells[2:4], map[string]float64{"noise_factor": noise})
}
// #endregion noise

// #region cleavage
// CleavageParser maps missing-cleavage rows:
// tool, missing_cleavages, aa_recall, aa_precision, peptide_recall.
type CleavageParser struct{}

func (CleavageParser) Fields() []string {
	return []string{"missing_cleavages", "aa_recall", "aa_precision", "peptide_recall"}
}

func (CleavageParser) ParseRow(cells []string) (Row, error) {
	if err := need(cells, 5); err != nil {
		return Row{}, err
	}
	mc, err := intCell(cells, 1, "missing_cleavages")
	if err != nil {
		return Row{}, err
	}
	values := map[string]float64{"missing_cleavages": float64(mc)}
	for i, name := range []string{"aa_recall", "aa_precision", "peptide_recall"} {
		v, err := floatCell(cells, i+2, name)
		if err != nil {
			return Row{}, err
		}
		values[name] = v
	}
	return Row{Tool: cells[0], Values: values}, nil
}
// #endregion cleavage

// #region length
// LengthParser maps peptide-length rows:
// tool, peptide_length, aa_recall, peptide_recall.
type LengthParser struct{}

func (LengthParser) Fields() []string {
	return []string{"peptide_length", "aa_recall", "peptide_recall"}
}

func (LengthParser) ParseRow(cells []string) (Row, error) {
	if err := need(cells, 4); err != nil {
		return Row{}, err
	}
	length, err := intCell(cells, 1, "peptide_length")
	if err != nil {
		return Row{}, err
	}
	if length <= 0 {
		return Row{}, fmt.Errorf("peptide_length %d: must be positive", length)
	}
	return recallRow(cells[0], cells[2:4], map[string]float64{"peptide_length": float64(length)})
}
// #endregion length

// #region threshold
// ThresholdParser maps precision/recall curve rows:
// tool, score_threshold, aa_precision, aa_recall.
type ThresholdParser struct{}

func (ThresholdParser) Fields() []string {
	return []string{"score_threshold", "aa_precision", "aa_recall"}
}

func (ThresholdParser) ParseRow(cells []string) (Row, error) {
	if err := need(cells, 4); err != nil {
		return Row{}, err
	}
	values := make(map[string]float64, 3)
	for i, name := range []string{"score_threshold", "aa_precision", "aa_recall"} {
		v, err := floatCell(cells, i+1, name)
		if err != nil {
			return Row{}, err
		}
		values[name] = v
	}
	return Row{Tool: cells[0], Values: values}, nil
}
// #endregion threshold

// #region helpers
func need(cells []string, n int) error {
	if len(cells) < n {
		return shortRowError{want: n, got: len(cells)}
	}
	if cells[0] == "" {
		return fmt.Errorf("empty tool name")
	}
	return nil
}

func floatCell(cells []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(cells[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, cells[i], err)
	}
	return v, nil
}

func intCell(cells []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(cells[i])
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, cells[i], err)
	}
	return v, nil
}

// recallRow fills aa_recall and peptide_recall from two cells.
func recallRow(tool string, cells []string, values map[string]float64) (Row, error) {
	for i, name := range []string{"aa_recall", "peptide_recall"} {
		v, err := floatCell(cells, i, name)
		if err != nil {
			return Row{}, err
		}
		values[name] = v
	}
	return Row{Tool: tool, Values: values}, nil
}
// #endregion helpers
