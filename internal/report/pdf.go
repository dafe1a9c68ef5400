package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/timeutil"
	"github.com/banshee-data/lifting.report/internal/units"
)

// Title is printed at the top of every report.
const Title = "Lifting Analysis Report"

// Document is everything the PDF shows.
type Document struct {
	GeneratedAt time.Time
	HeightCM    int
	WeightKG    int
	// WeightUnits is units.KG or units.LB; lb adds a converted value.
	WeightUnits string

	Rows      []SecondRow
	Summaries []SecondSummary
	Analysis  *lifting.Analysis

	// Logo is an optional PNG or JPEG printed in the top left corner.
	Logo     []byte
	LogoType string

	// Footer is printed on every page next to the page number.
	Footer string
}

var tableColumns = []struct {
	title string
	width float64
	align string
}{
	{"Second", 20, "C"},
	{"Action", 90, "L"},
	{"Error Frames", 35, "C"},
	{"% Error Frames", 35, "C"},
}

// RenderPDF writes doc as an A4 PDF to w.
func RenderPDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, false)
	pdf.SetCreator(doc.Footer, false)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s    Page %d/{nb}", doc.Footer, pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if len(doc.Logo) > 0 {
		opt := fpdf.ImageOptions{ImageType: doc.LogoType, ReadDpi: true}
		pdf.RegisterImageOptionsReader("logo", opt, bytes.NewReader(doc.Logo))
		pdf.ImageOptions("logo", 15, 15, 30, 0, false, opt, 0, "")
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 20, Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, doc.GeneratedAt.Format(timeutil.ReportHeaderLayout), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.CellFormat(0, 10, fmt.Sprintf("Individual Height: %d cm", doc.HeightCM), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, "Lifted Weight: "+units.FormatWeight(doc.WeightKG, doc.WeightUnits), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	writeTable(pdf, doc.Rows)

	if doc.Analysis != nil {
		if err := writeChartPage(pdf, doc); err != nil {
			return err
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func writeTable(pdf *fpdf.Fpdf, rows []SecondRow) {
	pdf.SetFont("Arial", "B", 10)
	for i, c := range tableColumns {
		ln := 0
		if i == len(tableColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 10, c.title, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	if len(rows) == 0 {
		pdf.CellFormat(180, 8, "No frames exceeded the limits.", "1", 1, "C", false, 0, "")
		return
	}
	_, lineHt := pdf.GetFontSize()
	h := lineHt + 2
	for _, r := range rows {
		cells := []string{
			fmt.Sprintf("%d", r.Second),
			r.Action,
			fmt.Sprintf("%d", r.ErrorFrames),
			fmt.Sprintf("%.2f%%", r.ErrorPercentage),
		}
		for i, c := range tableColumns {
			ln := 0
			if i == len(tableColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(c.width, h, cells[i], "1", ln, c.align, false, 0, "")
		}
	}
}

func writeChartPage(pdf *fpdf.Fpdf, doc Document) error {
	a := doc.Analysis

	var png bytes.Buffer
	if err := RenderChartPNG(&png, a); err != nil {
		return err
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, "Lifting Index per Frame", "", 1, "L", false, 0, "")

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("li-chart", opt, &png)
	pdf.ImageOptions("li-chart", 10, pdf.GetY(), 190, 0, true, opt, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Diagnostics", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)

	lines := []string{
		fmt.Sprintf("Frames analysed: %d", len(a.Frames)),
		fmt.Sprintf("Frames out of limits: %d", len(a.OutOfLimit)),
		fmt.Sprintf("Calibrated height: %.2f", a.CalibratedHeight),
		fmt.Sprintf("Height used for RWL: %.2f", a.EquationHeight),
	}
	if peak, sec := peakSecond(doc.Summaries); sec > 0 {
		lines = append(lines, fmt.Sprintf("Peak LI: %.3f in second %d", peak, sec))
	}
	if len(a.LookupErrors) > 0 {
		frames := make([]int, len(a.LookupErrors))
		for i, le := range a.LookupErrors {
			frames[i] = le.Frame
		}
		lines = append(lines, "Frames without LI: "+frameList(frames))
	}
	if len(a.ActionGaps) > 0 {
		lines = append(lines, "Frames at or above LI 1.0 without an action: "+frameList(a.ActionGaps))
	}
	for _, l := range lines {
		pdf.MultiCell(0, 6, l, "", "L", false)
	}
	return pdf.Error()
}

func peakSecond(summaries []SecondSummary) (peak float64, second int) {
	for _, s := range summaries {
		if second == 0 || s.PeakLI > peak {
			peak, second = s.PeakLI, s.Second
		}
	}
	return peak, second
}

// frameList prints at most 20 frame numbers.
func frameList(frames []int) string {
	const max = 20
	parts := make([]string, 0, max+1)
	for i, f := range frames {
		if i == max {
			parts = append(parts, fmt.Sprintf("and %d more", len(frames)-max))
			break
		}
		parts = append(parts, fmt.Sprintf("%d", f))
	}
	return strings.Join(parts, ", ")
}
