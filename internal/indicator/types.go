package indicator

import (
	"encoding/json"
	"errors"
	"fmt"
)

// #region chart-kind
// ChartKind tells the rendering layer how to draw an indicator.
type ChartKind string

const (
	ChartHeatmap ChartKind = "heatmap"
	ChartLine    ChartKind = "line"
)
// #endregion chart-kind

// #region row
// Row is one mapped table row. Values holds the parser's fixed field set.
type Row struct {
	Tool       string
	Values     map[string]float64
	normalized bool
}

// percentFields are stored as 0-100 in the source tables.
var percentFields = []string{"aa_recall", "peptide_recall", "aa_precision"}

// Normalized returns the row with percentage fields scaled to 0-1 fractions.
// Applying it to an already normalized row is a no-op.
func (r Row) Normalized() Row {
	if r.normalized {
		return r
	}
	values := make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	for _, f := range percentFields {
		if v, ok := values[f]; ok {
			values[f] = v * 0.01
		}
	}
	return Row{Tool: r.Tool, Values: values, normalized: true}
}

// MarshalJSON flattens the row into {"tool": ..., field: value, ...}.
func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat["tool"] = r.Tool
	return json.Marshal(flat)
}
// #endregion row

// #region row-parser
// RowParser maps the trimmed cells of one data row to a Row. Each indicator
// type implements it with its own fixed column layout.
type RowParser interface {
	Fields() []string
	ParseRow(cells []string) (Row, error)
}
// #endregion row-parser

// #region descriptor
// Descriptor declares one indicator: where its data lives, how its rows map,
// and how it is charted.
type Descriptor struct {
	Key            string    `json:"key"`
	SourceFilename string    `json:"source_filename"`
	DisplayName    string    `json:"display_name"`
	Description    string    `json:"description"`
	ChartKind      ChartKind `json:"chart_kind"`
	XAxis          string    `json:"x_axis"`
	YAxis          string    `json:"y_axis,omitempty"`
	Parser         RowParser `json:"-"`
}
// #endregion descriptor

// #region dataset
// Dataset is a parsed indicator, rows grouped by tool.
type Dataset struct {
	Descriptor Descriptor       `json:"descriptor"`
	Fields     []string         `json:"fields"`
	Tools      []string         `json:"tools"` // first-seen order
	RowsByTool map[string][]Row `json:"rows_by_tool"`
}
// #endregion dataset

// #region errors
var (
	errEmptyKey     = errors.New("indicator: empty key")
	errDuplicateKey = errors.New("indicator: duplicate key")
	errNoParser     = errors.New("indicator: descriptor has no row parser")
)

type shortRowError struct {
	want, got int
}

func (e shortRowError) Error() string {
	return fmt.Sprintf("expected %d columns, got %d", e.want, e.got)
}
// #endregion errors
