package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lifting.report/internal/mocap"
	"github.com/banshee-data/lifting.report/internal/testutil"
)

func writeCapture(t *testing.T, dir string) string {
	t.Helper()
	set := mocap.DefaultMarkerSet()
	series := testutil.LiftSeries(set, 250,
		mocap.Point3{Z: 100},
		mocap.Point3{X: 30, Z: 10},
		mocap.Point3{X: 30, Z: 70},
	)
	path := filepath.Join(dir, "lift.csv")
	require.NoError(t, os.WriteFile(path, testutil.CSVExport(t, series, set.All()), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWritesReportAndHistory(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir)
	out := filepath.Join(dir, "reports")
	dbPath := filepath.Join(dir, "history.db")

	code, stdout, stderr := runCLI(t,
		"-filepath", capture, "-height", "180", "-weight", "40",
		"-out", out, "-html", "-units", "lb", "-tz", "UTC", "-db", dbPath)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "report: ")
	assert.Contains(t, stdout, "chart: ")

	pdfs, err := filepath.Glob(filepath.Join(out, "lifting_analysis_*.pdf"))
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	data, err := os.ReadFile(pdfs[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	code, stdout, stderr = runCLI(t, "history", "-db", dbPath, "-tz", "UTC")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, capture)
	assert.Contains(t, stdout, "height 180 cm")
	assert.Equal(t, 1, strings.Count(stdout, "\n"))

	runID := strings.Fields(stdout)[0]
	code, stdout, stderr = runCLI(t, "history", "-db", dbPath, "-tz", "UTC", "-run", runID)
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "run "+runID+"\n"))
	assert.Contains(t, stdout, "source     "+capture)
	assert.Contains(t, stdout, "weight 40 kg")
	assert.Contains(t, stdout, "100.00%")

	code, stdout, stderr = runCLI(t, "history", "-db", dbPath, "-delete", runID)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "deleted "+runID+"\n", stdout)

	code, _, stderr = runCLI(t, "history", "-db", dbPath, "-run", runID)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "analysis run not found")

	code, stdout, _ = runCLI(t, "history", "-db", dbPath)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
}

func TestRunHistoryUsage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	tests := []struct {
		name string
		args []string
	}{
		{"no db", []string{"history"}},
		{"run and delete", []string{"history", "-db", dbPath, "-run", "a", "-delete", "b"}},
		{"bad timezone", []string{"history", "-db", dbPath, "-tz", "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"missing weight", []string{"-filepath", capture, "-height", "180"}},
		{"zero height", []string{"-filepath", capture, "-height", "0", "-weight", "20"}},
		{"negative weight", []string{"-filepath", capture, "-height", "180", "-weight", "-2"}},
		{"bad units", []string{"-filepath", capture, "-height", "180", "-weight", "20", "-units", "stone"}},
		{"bad height source", []string{"-filepath", capture, "-height", "180", "-weight", "20", "-height-source", "guess"}},
		{"unknown flag", []string{"-nope"}},
		{"stray argument", []string{"-filepath", capture, "-height", "180", "-weight", "20", "extra"}},
		{"missing config", []string{"-filepath", capture, "-height", "180", "-weight", "20", "-config", filepath.Join(dir, "nope.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestRunAnalysisFailures(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "ragged.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Frame#,top,,\n,X,Y,Z\n1,1,2\n"), 0644))
	code, _, stderr := runCLI(t, "-filepath", bad, "-height", "180", "-weight", "20", "-out", dir)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "analysis failed")

	code, _, _ = runCLI(t, "-filepath", filepath.Join(dir, "missing.csv"), "-height", "180", "-weight", "20", "-out", dir)
	assert.Equal(t, exitFailure, code)
}

func TestRunWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir)
	out := filepath.Join(dir, "from-config")
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("height_source: subject\noutput_dir: "+out+"\n"), 0644))

	code, _, stderr := runCLI(t, "-filepath", capture, "-height", "180", "-weight", "20", "-config", cfgPath)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "subject source")

	pdfs, _ := filepath.Glob(filepath.Join(out, "*.pdf"))
	assert.Len(t, pdfs, 1)
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "lifting-report")
}

func TestRunMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "m.db")

	code, stdout, stderr := runCLI(t, "migrate", "up", "-db", dbPath)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "up to date")

	code, _, _ = runCLI(t, "migrate", "up")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "migrate", "-db", dbPath, "sideways")
	assert.Equal(t, exitFailure, code)
}

func TestReorder(t *testing.T) {
	assert.Equal(t, []string{"-db", "x.db", "up"}, reorder([]string{"up", "-db", "x.db"}))
	assert.Equal(t, []string{"-db=x.db", "version", "1"}, reorder([]string{"version", "-db=x.db", "1"}))
}

func TestRunHelp(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "Usage: lifting-report")
}
