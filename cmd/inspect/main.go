package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the diagnostics database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show diagnostics of one run (full id or prefix)")
	source := flag.String("source", "", "filter diagnostics to sources containing this text")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/diagnostics.db [--last N] [--run id] [--source text] [--json]")
		os.Exit(2)
	}

	store, err := diagnostics.NewStore(*dbPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(os.Stdout, store, *runID, *source, *jsonOut)
	} else {
		err = runListMode(os.Stdout, store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string `json:"run_id"`
	Command     string `json:"command"`
	StartedAt   string `json:"started_at"`
	Diagnostics int    `json:"diagnostics"`
}

func runListMode(w io.Writer, store *diagnostics.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[len(runs)-1-i] = listRow{
			RunID:       r.RunID,
			Command:     r.Command,
			StartedAt:   r.StartedAt.Format("2006-01-02T15:04:05Z"),
			Diagnostics: r.Diagnostics,
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	fmt.Fprintf(w, "%-8s  %5s  %-20s  %s\n", "Run", "Diags", "Started", "Command")
	fmt.Fprintf(w, "%-8s+-%5s+-%-20s+-%s\n", "--------", "-----", "--------------------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-8s  %5d  %-20s  %s\n", shortID(r.RunID), r.Diagnostics, r.StartedAt, r.Command)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type diagRow struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type detailOutput struct {
	RunID       string    `json:"run_id"`
	Command     string    `json:"command"`
	Diagnostics []diagRow `json:"diagnostics"`
}

func runDetailMode(w io.Writer, store *diagnostics.Store, prefix, source string, jsonOut bool) error {
	run, err := findRun(store, prefix)
	if err != nil {
		return err
	}
	items, err := store.ListDiagnostics(run.RunID)
	if err != nil {
		return err
	}

	out := detailOutput{RunID: run.RunID, Command: run.Command, Diagnostics: []diagRow{}}
	for _, d := range items {
		if source != "" && !strings.Contains(d.Source, source) {
			continue
		}
		out.Diagnostics = append(out.Diagnostics, diagRow{Source: d.Source, Line: d.Line, Reason: d.Reason})
	}

	if jsonOut {
		return printJSON(w, out)
	}
	fmt.Fprintf(w, "Run:      %s\n", out.RunID)
	fmt.Fprintf(w, "Command:  %s\n", out.Command)
	if len(out.Diagnostics) == 0 {
		fmt.Fprintln(w, "\nno diagnostics")
		return nil
	}
	fmt.Fprintln(w)
	for _, d := range out.Diagnostics {
		fmt.Fprintf(w, "  %s:%d  %s\n", d.Source, d.Line, d.Reason)
	}
	return nil
}

// findRun resolves a full run id or a unique prefix against the most recent runs.
func findRun(store *diagnostics.Store, prefix string) (diagnostics.RunSummary, error) {
	runs, err := store.ListRuns(0)
	if err != nil {
		return diagnostics.RunSummary{}, err
	}
	var match []diagnostics.RunSummary
	for _, r := range runs {
		if r.RunID == prefix {
			return r, nil
		}
		if strings.HasPrefix(r.RunID, prefix) {
			match = append(match, r)
		}
	}
	switch len(match) {
	case 0:
		return diagnostics.RunSummary{}, fmt.Errorf("run %q not found", prefix)
	case 1:
		return match[0], nil
	default:
		return diagnostics.RunSummary{}, fmt.Errorf("run prefix %q is ambiguous (%d matches)", prefix, len(match))
	}
}

// #endregion detail-mode

// #region output

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
