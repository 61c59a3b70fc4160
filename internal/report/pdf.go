package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// ExportPDF writes one A4 page per chart image, bar then pie for each set.
func ExportPDF(sets []*ChartSet) ([]byte, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("no charts to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Alumni Statistics", true)
	pdf.SetMargins(15, 15, 15)

	for _, set := range sets {
		pages := []struct {
			kind  string
			chart Chart
		}{
			{"bar", set.Bar},
			{"pie", set.Pie},
		}
		for _, p := range pages {
			if len(p.chart.PNG) == 0 {
				continue
			}
			name := fmt.Sprintf("%s-%s", set.Type, p.kind)
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}

			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 16)
			pdf.CellFormat(0, 10, p.chart.Title, "", 1, "C", false, 0, "")
			pdf.Ln(4)

			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.chart.PNG))
			pdf.ImageOptions(name, 15, pdf.GetY(), 180, 0, false, opts, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
