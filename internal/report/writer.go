package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/lifting.report/internal/fsutil"
	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/monitoring"
	"github.com/banshee-data/lifting.report/internal/security"
	"github.com/banshee-data/lifting.report/internal/timeutil"
	"github.com/banshee-data/lifting.report/internal/units"
)

// FilenamePrefix starts every report filename.
const FilenamePrefix = "lifting_analysis_"

// Filename returns the PDF name for a report generated at t.
func Filename(t time.Time) string {
	return FilenamePrefix + timeutil.ReportStamp(t) + ".pdf"
}

// Writer renders analyses into files under OutDir.
type Writer struct {
	FS     fsutil.FileSystem
	Clock  timeutil.Clock
	OutDir string

	FramesPerSecond int
	WeightUnits     string
	// Timezone for the printed timestamp and the filename; "" is local time.
	Timezone string

	Logo     []byte
	LogoType string
	// HTML also writes the interactive chart next to the PDF.
	HTML   bool
	Footer string
}

// Result describes what Write produced.
type Result struct {
	GeneratedAt time.Time
	PDFPath     string
	HTMLPath    string
	Rows        []SecondRow
	Summaries   []SecondSummary
}

// NewWriter returns a Writer on the real filesystem and clock.
func NewWriter(outDir string) *Writer {
	return &Writer{
		FS:              fsutil.OSFileSystem{},
		Clock:           timeutil.RealClock{},
		OutDir:          outDir,
		FramesPerSecond: DefaultFramesPerSecond,
		WeightUnits:     units.KG,
	}
}

// Write aggregates a and writes the report files.
func (w *Writer) Write(a *lifting.Analysis) (*Result, error) {
	fps := w.FramesPerSecond
	if fps <= 0 {
		fps = DefaultFramesPerSecond
	}
	outDir := w.OutDir
	if outDir == "" {
		outDir = "."
	}

	now, err := units.ConvertTime(w.Clock.Now(), w.Timezone)
	if err != nil {
		return nil, err
	}

	rows, err := Aggregate(a.OutOfLimit, a.Actions, len(a.Frames), fps)
	if err != nil {
		return nil, fmt.Errorf("aggregate report rows: %w", err)
	}
	res := &Result{
		GeneratedAt: now,
		Rows:        rows,
		Summaries:   Summarize(a, fps),
	}

	res.PDFPath, err = security.ContainedPath(outDir, Filename(now))
	if err != nil {
		return nil, err
	}
	if err := w.FS.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	doc := Document{
		GeneratedAt: now,
		HeightCM:    a.Params.HeightCM,
		WeightKG:    a.Params.WeightKG,
		WeightUnits: w.WeightUnits,
		Rows:        rows,
		Summaries:   res.Summaries,
		Analysis:    a,
		Logo:        w.Logo,
		LogoType:    w.LogoType,
		Footer:      w.Footer,
	}
	if err := RenderPDF(&buf, doc); err != nil {
		return nil, err
	}
	if err := w.checkContained(res.PDFPath, outDir); err != nil {
		return nil, err
	}
	if err := w.FS.WriteFile(res.PDFPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	monitoring.Logf("wrote %s (%d rows)", res.PDFPath, len(rows))

	if w.HTML {
		name := strings.TrimSuffix(Filename(now), ".pdf") + ".html"
		res.HTMLPath, err = security.ContainedPath(outDir, name)
		if err != nil {
			return nil, err
		}
		buf.Reset()
		subtitle := fmt.Sprintf("height %d cm, weight %s", a.Params.HeightCM, units.FormatWeight(a.Params.WeightKG, w.WeightUnits))
		if err := RenderHTML(&buf, a, subtitle); err != nil {
			return nil, err
		}
		if err := w.checkContained(res.HTMLPath, outDir); err != nil {
			return nil, err
		}
		if err := w.FS.WriteFile(res.HTMLPath, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("failed to write chart: %w", err)
		}
		monitoring.Logf("wrote %s", res.HTMLPath)
	}

	return res, nil
}

// checkContained resolves symlinks on disk so a link planted under outDir
// cannot redirect a report write elsewhere. In-memory filesystems have no
// links and are only checked lexically by ContainedPath.
func (w *Writer) checkContained(path, outDir string) error {
	if _, ok := w.FS.(fsutil.OSFileSystem); !ok {
		return nil
	}
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to write report through symlink %s", path)
	}
	return security.ValidatePathWithinDirectory(path, outDir)
}

// LoadLogo reads an image for the report header and infers its type from
// the extension.
func LoadLogo(fsys fsutil.FileSystem, path string) ([]byte, string, error) {
	var kind string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		kind = "PNG"
	case ".jpg", ".jpeg":
		kind = "JPG"
	case ".gif":
		kind = "GIF"
	default:
		return nil, "", fmt.Errorf("unsupported logo format %q (use png, jpg or gif)", filepath.Ext(path))
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read logo: %w", err)
	}
	return data, kind, nil
}
