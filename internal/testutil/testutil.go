// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the synthetic captures used across the mocap,
// lifting and report tests so that each suite builds frames the same way.
package testutil

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/banshee-data/lifting.report/internal/mocap"
)

// LiftSeries builds an n-frame capture for set. Every body marker sits at
// body; every box marker moves linearly from boxStart (frame 1) to boxEnd
// (frame n). Desk markers stay at the origin.
func LiftSeries(set mocap.MarkerSet, n int, body, boxStart, boxEnd mocap.Point3) *mocap.FrameSeries {
	frames := make([]mocap.Frame, n)
	for i := 0; i < n; i++ {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		box := mocap.Point3{
			X: boxStart.X + (boxEnd.X-boxStart.X)*frac,
			Y: boxStart.Y + (boxEnd.Y-boxStart.Y)*frac,
			Z: boxStart.Z + (boxEnd.Z-boxStart.Z)*frac,
		}
		sample := make(mocap.MarkerSample)
		for _, name := range set.Desk {
			sample[name] = mocap.Point3{}
		}
		for _, name := range set.Body {
			sample[name] = body
		}
		for _, name := range set.Box {
			sample[name] = box
		}
		frames[i] = mocap.Frame{Number: i + 1, Markers: sample}
	}
	return &mocap.FrameSeries{Frames: frames}
}

// StaticSeries builds an n-frame capture where nothing moves.
func StaticSeries(set mocap.MarkerSet, n int, body, box mocap.Point3) *mocap.FrameSeries {
	return LiftSeries(set, n, body, box, box)
}

// CSVExport renders series in the two-header-row CSV layout the loader reads,
// with one X/Y/Z column triple per marker in markers order.
func CSVExport(t *testing.T, series *mocap.FrameSeries, markers []string) []byte {
	t.Helper()

	top := []string{mocap.FrameColumn}
	sub := []string{""}
	for _, m := range markers {
		top = append(top, m, "", "")
		sub = append(sub, "X", "Y", "Z")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{top, sub}
	for _, f := range series.Frames {
		row := []string{strconv.Itoa(f.Number)}
		for _, m := range markers {
			p := f.Markers[m]
			row = append(row,
				strconv.FormatFloat(p.X, 'f', -1, 64),
				strconv.FormatFloat(p.Y, 'f', -1, 64),
				strconv.FormatFloat(p.Z, 'f', -1, 64),
			)
		}
		rows = append(rows, row)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("failed to write csv fixture: %v", err)
	}
	return buf.Bytes()
}
