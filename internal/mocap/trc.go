package mocap

import (
	"fmt"
	"strconv"
	"strings"
)

// trcHeaderLines is the count of lines before the marker name row:
// PathFileType, the header keys and the header values.
const trcHeaderLines = 3

// ParseTRC parses a tab-separated TRC file (Vicon, OpenSim). The header block
// supplies DataRate and Units; the marker and coordinate rows that follow use
// the same two-level layout as the CSV export.
func ParseTRC(data []byte) (*FrameSeries, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < trcHeaderLines+2 {
		return nil, &DataError{Reason: "trc file too short"}
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "PathFileType") {
		return nil, &DataError{Reason: "trc file missing PathFileType header"}
	}

	keys := strings.Split(strings.TrimSpace(lines[1]), "\t")
	vals := strings.Split(strings.TrimSpace(lines[2]), "\t")
	header := make(map[string]string, len(keys))
	for i, k := range keys {
		if i < len(vals) {
			header[strings.TrimSpace(k)] = strings.TrimSpace(vals[i])
		}
	}

	rows := make([][]string, 0, len(lines)-trcHeaderLines)
	for _, line := range lines[trcHeaderLines:] {
		rows = append(rows, strings.Split(line, "\t"))
	}
	series, err := ParseGrid(rows, true)
	if err != nil {
		return nil, err
	}

	if raw, ok := header["DataRate"]; ok && raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &DataError{Reason: fmt.Sprintf("invalid DataRate %q", raw)}
		}
		series.FrameRate = rate
	}
	series.Units = header["Units"]

	if raw, ok := header["NumFrames"]; ok && raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n != series.Len() {
			return nil, &DataError{Reason: fmt.Sprintf("header declares %d frames, file has %d", n, series.Len())}
		}
	}
	return series, nil
}
