package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/service/servicetest"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/spectrum"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := servicetest.WriteBench(t)
	t.Setenv("INGEST_DATA_ROOT", cfg.DataRoot)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestPreviewCommand(t *testing.T) {
	out, err := runCLI(t, "preview", "protease", "trypsin-human-mgf", "-n", "2")
	require.NoError(t, err)

	var spectra []spectrum.Spectrum
	require.NoError(t, json.Unmarshal([]byte(out), &spectra))
	require.Len(t, spectra, 2)
	assert.Equal(t, "t2", spectra[1].Title)
}

func TestIndicatorsCommand(t *testing.T) {
	out, err := runCLI(t, "indicators")
	require.NoError(t, err)

	var got struct {
		Indicators []json.RawMessage `json:"indicators"`
		Failures   []struct {
			Key      string `json:"key"`
			NotFound bool   `json:"not_found"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Indicators, 2)
	require.Len(t, got.Failures, 2)
	assert.True(t, got.Failures[0].NotFound)
}

func TestListCommand_UnknownCategory(t *testing.T) {
	_, err := runCLI(t, "list", "tissue")
	assert.Error(t, err)
}

func TestCommandRecordsRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "diag.db")
	t.Setenv("INGEST_DIAG_DB", db)

	_, err := runCLI(t, "indicators", "noise_peaks")
	require.NoError(t, err)

	store, err := diagnostics.NewStore(db, nil)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "indicators noise_peaks", runs[0].Command)
	assert.Equal(t, 1, runs[0].Diagnostics)
}
