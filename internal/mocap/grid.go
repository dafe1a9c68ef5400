package mocap

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lifting.report/internal/monitoring"
)

// FrameColumn is the header of the frame number column.
const FrameColumn = "Frame#"

type columnRef struct {
	marker string
	axis   string
	index  int
}

// ParseGrid builds a FrameSeries from a two-level header table: the first row
// names markers (blank cells continue the marker to their left, as merged
// spreadsheet cells export), the second row names axes. A Frame# column holds
// the frame numbers. Columns that are neither Frame# nor X/Y/Z are ignored.
//
// Empty cells are imputed with the mean of their column. With strictWidth
// every data row must reach the last coordinate column; spreadsheet readers
// drop trailing empty cells, so workbooks parse with it off.
func ParseGrid(rows [][]string, strictWidth bool) (*FrameSeries, error) {
	if len(rows) < 2 {
		return nil, &DataError{Reason: "table needs two header rows"}
	}
	markerRow, axisRow := rows[0], rows[1]
	width := len(markerRow)
	if len(axisRow) > width {
		width = len(axisRow)
	}

	frameCol := -1
	var cols []columnRef
	current := ""
	for i := 0; i < width; i++ {
		top := strings.TrimSpace(cell(markerRow, i))
		sub := strings.TrimSpace(cell(axisRow, i))
		if top == FrameColumn || (top == "" && sub == FrameColumn) {
			frameCol = i
			current = ""
			continue
		}
		if top != "" {
			current = normaliseMarker(top)
		}
		axis, ok := normaliseAxis(sub)
		if !ok || current == "" {
			continue
		}
		cols = append(cols, columnRef{marker: current, axis: axis, index: i})
	}
	if frameCol < 0 {
		return nil, &DataError{Reason: "missing " + FrameColumn + " column"}
	}
	if len(cols) == 0 {
		return nil, &DataError{Reason: "no marker coordinate columns"}
	}
	if err := checkComplete(cols); err != nil {
		return nil, err
	}
	lastCol := cols[len(cols)-1].index

	var data [][]string
	var rowNumbers []int
	for r := 2; r < len(rows); r++ {
		if blankRow(rows[r]) {
			continue
		}
		if n := len(trimTrailing(rows[r])); n > width {
			return nil, &DataError{
				Reason: fmt.Sprintf("ragged row: %d cells, header has %d", n, width),
				Row:    r + 1,
			}
		}
		if strictWidth && len(rows[r]) <= lastCol {
			return nil, &DataError{
				Reason: fmt.Sprintf("ragged row: %d cells, coordinates need %d", len(rows[r]), lastCol+1),
				Row:    r + 1,
			}
		}
		data = append(data, rows[r])
		rowNumbers = append(rowNumbers, r+1)
	}
	if len(data) == 0 {
		return nil, &DataError{Reason: "empty frame series"}
	}

	values := make([][]float64, len(cols))
	for c := range cols {
		values[c] = make([]float64, len(data))
	}
	frames := make([]Frame, len(data))
	for i, row := range data {
		n, err := parseFrameNumber(cell(row, frameCol))
		if err != nil {
			return nil, &DataError{Reason: err.Error(), Row: rowNumbers[i]}
		}
		if n != i+1 {
			return nil, &DataError{
				Reason: fmt.Sprintf("frame numbers must be contiguous from 1, expected %d got %d", i+1, n),
				Frame:  n,
				Row:    rowNumbers[i],
			}
		}
		frames[i] = Frame{Number: n, Markers: make(MarkerSample, len(cols)/3)}

		for c, ref := range cols {
			raw := strings.TrimSpace(cell(row, ref.index))
			if raw == "" {
				values[c][i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &DataError{
					Reason: fmt.Sprintf("invalid coordinate %q", raw),
					Marker: ref.marker, Axis: ref.axis, Frame: n,
				}
			}
			values[c][i] = v
		}
	}

	for c, ref := range cols {
		filled, err := imputeMean(values[c])
		if err != nil {
			return nil, &DataError{Reason: err.Error(), Marker: ref.marker, Axis: ref.axis}
		}
		if filled > 0 {
			monitoring.Logf("imputed %d missing %s.%s values with column mean", filled, ref.marker, ref.axis)
		}
		for i := range frames {
			p := frames[i].Markers[ref.marker]
			p.set(ref.axis, values[c][i])
			frames[i].Markers[ref.marker] = p
		}
	}

	return &FrameSeries{Frames: frames}, nil
}

// imputeMean replaces NaN entries with the mean of the others and returns
// how many it replaced.
func imputeMean(col []float64) (int, error) {
	present := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0, fmt.Errorf("column has no values")
	}
	missing := len(col) - len(present)
	if missing == 0 {
		return 0, nil
	}
	mean := stat.Mean(present, nil)
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = mean
		}
	}
	return missing, nil
}

func checkComplete(cols []columnRef) error {
	axes := make(map[string]map[string]bool)
	var order []string
	for _, c := range cols {
		if axes[c.marker] == nil {
			axes[c.marker] = make(map[string]bool)
			order = append(order, c.marker)
		}
		if axes[c.marker][c.axis] {
			return &DataError{Reason: "duplicate column", Marker: c.marker, Axis: c.axis}
		}
		axes[c.marker][c.axis] = true
	}
	for _, m := range order {
		for _, a := range Axes {
			if !axes[m][a] {
				return &DataError{Reason: "missing coordinate column", Marker: m, Axis: a}
			}
		}
	}
	return nil
}

// normaliseMarker strips a "Subject:" prefix, as Vicon Nexus writes marker
// headers qualified by the subject name.
func normaliseMarker(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// normaliseAxis accepts "X", "x" and the numbered TRC form "X12".
func normaliseAxis(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	axis := s[:1]
	if axis != "X" && axis != "Y" && axis != "Z" {
		return "", false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return axis, true
}

func parseFrameNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing frame number")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	// spreadsheets hand back 1.0 for integer cells
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid frame number %q", raw)
	}
	return int(f), nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// trimTrailing drops empty trailing cells; exporters often end rows with a
// separator.
func trimTrailing(row []string) []string {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
