package mocap

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/lifting.report/internal/fsutil"
	"github.com/banshee-data/lifting.report/internal/monitoring"
)

// Format identifies a capture export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatTRC  Format = "trc"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".trc":
		return FormatTRC, nil
	}
	return "", fmt.Errorf("unsupported capture file extension %q (want .csv, .xlsx or .trc)", filepath.Ext(path))
}

// Load reads a capture export from fsys and returns its frame series.
func Load(fsys fsutil.FileSystem, path string) (*FrameSeries, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}

	var series *FrameSeries
	switch format {
	case FormatCSV:
		series, err = ParseCSV(data)
	case FormatXLSX:
		series, err = ParseXLSX(data)
	case FormatTRC:
		series, err = ParseTRC(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	series.Source = path

	monitoring.Logf("loaded %d frames from %s (%s)", series.Len(), path, format)
	return series, nil
}

// ParseCSV parses a comma-separated export with two header rows.
func ParseCSV(data []byte) (*FrameSeries, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &DataError{Reason: fmt.Sprintf("malformed csv: %v", err)}
	}
	return ParseGrid(rows, true)
}

// ParseXLSX parses the first sheet of a workbook with the same layout as the
// CSV export.
func ParseXLSX(data []byte) (*FrameSeries, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			monitoring.Logf("failed to close workbook: %v", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DataError{Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return ParseGrid(rows, false)
}
