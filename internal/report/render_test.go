package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lifting.report/internal/fsutil"
	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/mocap"
	"github.com/banshee-data/lifting.report/internal/testutil"
	"github.com/banshee-data/lifting.report/internal/timeutil"
	"github.com/banshee-data/lifting.report/internal/units"
)

func heavyAnalysis(t *testing.T, frames int) *lifting.Analysis {
	t.Helper()
	set := mocap.DefaultMarkerSet()
	series := testutil.StaticSeries(set, frames, mocap.Point3{Z: 100}, mocap.Point3{X: 30, Z: 100})
	opts := lifting.DefaultOptions()
	opts.HeightSource = lifting.HeightSubject
	a, err := lifting.Analyze(series, lifting.Params{HeightCM: 180, WeightKG: 20}, opts)
	require.NoError(t, err)
	return a
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRenderChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChartPNG(&buf, heavyAnalysis(t, 30)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderPDF(t *testing.T) {
	a := heavyAnalysis(t, 240)
	rows, err := Aggregate(a.OutOfLimit, a.Actions, len(a.Frames), 120)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = RenderPDF(&buf, Document{
		GeneratedAt: time.Date(2026, 10, 18, 7, 5, 3, 0, time.UTC),
		HeightCM:    180,
		WeightKG:    20,
		WeightUnits: units.LB,
		Rows:        rows,
		Summaries:   Summarize(a, 120),
		Analysis:    a,
		Logo:        pngLogo(t),
		LogoType:    "PNG",
		Footer:      "lifting-report test",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderPDFNoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, Document{GeneratedAt: time.Now(), HeightCM: 170, WeightKG: 5}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, heavyAnalysis(t, 20), "height 180 cm"))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Lifting Index and RWL per Frame")
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 10, 18, 7, 5, 3, 0, time.UTC)
	assert.Equal(t, "lifting_analysis_20261018070503.pdf", Filename(ts))
}

func TestWriterWrite(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	w := &Writer{
		FS:              mem,
		Clock:           timeutil.NewMockClock(time.Date(2026, 10, 18, 7, 5, 3, 0, time.UTC)),
		OutDir:          "reports",
		FramesPerSecond: 120,
		WeightUnits:     units.KG,
		Timezone:        "UTC",
		HTML:            true,
	}

	res, err := w.Write(heavyAnalysis(t, 250))
	require.NoError(t, err)

	assert.Equal(t, "reports/lifting_analysis_20261018070503.pdf", res.PDFPath)
	assert.Equal(t, "reports/lifting_analysis_20261018070503.html", res.HTMLPath)
	assert.Equal(t, []string{res.HTMLPath, res.PDFPath}, mem.Files("reports"))
	require.Len(t, res.Rows, 3)
	assert.Equal(t, 100.0, res.Rows[0].ErrorPercentage)
	assert.Len(t, res.Summaries, 3)

	data, err := mem.ReadFile(res.PDFPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWriterRejectsBadTimezone(t *testing.T) {
	w := NewWriter(t.TempDir())
	w.Timezone = "Mars/Olympus"
	_, err := w.Write(heavyAnalysis(t, 5))
	assert.Error(t, err)
}

func TestWriterRefusesSymlinkedReport(t *testing.T) {
	stamp := time.Date(2026, 10, 18, 7, 5, 3, 0, time.UTC)
	outside := t.TempDir()

	tests := []struct {
		name   string
		target string
		keep   bool
	}{
		{"existing target", "victim.pdf", true},
		{"dangling target", "created.pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			target := filepath.Join(outside, tt.target)
			if tt.keep {
				require.NoError(t, os.WriteFile(target, []byte("keep"), 0644))
			}
			require.NoError(t, os.Symlink(target, filepath.Join(out, Filename(stamp))))

			w := NewWriter(out)
			w.Clock = timeutil.NewMockClock(stamp)
			w.Timezone = "UTC"
			_, err := w.Write(heavyAnalysis(t, 5))
			require.Error(t, err)

			data, err := os.ReadFile(target)
			if tt.keep {
				require.NoError(t, err)
				assert.Equal(t, "keep", string(data))
			} else {
				assert.True(t, os.IsNotExist(err), "report was written through the link")
			}
		})
	}
}

func TestWriterWritesToDisk(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports")
	w := NewWriter(out)
	w.Clock = timeutil.NewMockClock(time.Date(2026, 10, 18, 7, 5, 3, 0, time.UTC))
	w.Timezone = "UTC"

	res, err := w.Write(heavyAnalysis(t, 5))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "lifting_analysis_20261018070503.pdf"), res.PDFPath)
	_, err = os.Stat(res.PDFPath)
	assert.NoError(t, err)
}

func TestLoadLogo(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	require.NoError(t, mem.WriteFile("logo.png", pngLogo(t), 0644))

	data, kind, err := LoadLogo(mem, "logo.png")
	require.NoError(t, err)
	assert.Equal(t, "PNG", kind)
	assert.NotEmpty(t, data)

	_, _, err = LoadLogo(mem, "logo.bmp")
	assert.Error(t, err)
	_, _, err = LoadLogo(mem, "missing.jpg")
	assert.True(t, strings.Contains(err.Error(), "failed to read logo"))
}
