// Package report renders a dataset's aggregation into a paginated PDF
// document.
package report

import (
	"bytes"
	"fmt"

	"github.com/equipstat/equipstat/internal/entity"
	"github.com/equipstat/equipstat/internal/stats"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"
)

// MaxDetailRows caps the row-detail table at the first rows in query order.
const MaxDetailRows = 50

// Filename returns the suggested download filename for a dataset's report.
func Filename(datasetID uint) string {
	return fmt.Sprintf("equipment_report_%d.pdf", datasetID)
}

// Generate renders the PDF report for one dataset. It fails with a
// not-found error under the same conditions as the summary endpoint.
func Generate(db *gorm.DB, datasetID uint) ([]byte, error) {
	dataset, rows, err := stats.Load(db, datasetID)
	if err != nil {
		return nil, err
	}
	summary := stats.FromRows(dataset, rows)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, fmt.Sprintf("Equipment Analysis Report: %s", dataset.Name), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeSummaryTable(pdf, summary)
	writeDistributionTable(pdf, summary.Distribution)
	writeDetailTable(pdf, rows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// detailRows caps the detail table at the first MaxDetailRows rows in
// query order, without sampling.
func detailRows(rows []entity.Equipment) []entity.Equipment {
	if len(rows) > MaxDetailRows {
		return rows[:MaxDetailRows]
	}
	return rows
}

func sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func headerRow(pdf *fpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(120, 120, 120)
	pdf.SetTextColor(255, 255, 255)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 8, label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(235, 228, 200)
	pdf.SetTextColor(0, 0, 0)
}

func writeSummaryTable(pdf *fpdf.Fpdf, summary *stats.Summary) {
	sectionHeading(pdf, "Summary Statistics")
	widths := []float64{90, 60}
	headerRow(pdf, widths, []string{"Metric", "Value"})

	cells := []struct {
		metric string
		value  string
	}{
		{"Total Equipment Count", fmt.Sprintf("%d", summary.TotalCount)},
		{"Average Flowrate", fmt.Sprintf("%.2f", summary.Averages.Flowrate)},
		{"Average Pressure", fmt.Sprintf("%.2f", summary.Averages.Pressure)},
		{"Average Temperature", fmt.Sprintf("%.2f", summary.Averages.Temperature)},
	}
	for _, cell := range cells {
		pdf.CellFormat(widths[0], 7, cell.metric, "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[1], 7, cell.value, "1", 0, "C", true, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

func writeDistributionTable(pdf *fpdf.Fpdf, distribution stats.Distribution) {
	sectionHeading(pdf, "Equipment Type Distribution")
	widths := []float64{90, 60}
	headerRow(pdf, widths, []string{"Equipment Type", "Count"})

	for _, tc := range distribution {
		pdf.CellFormat(widths[0], 7, tc.Type, "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", tc.Count), "1", 0, "C", true, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

func writeDetailTable(pdf *fpdf.Fpdf, rows []entity.Equipment) {
	sectionHeading(pdf, "Equipment Details")
	widths := []float64{50, 35, 30, 30, 30}
	headerRow(pdf, widths, []string{"Name", "Type", "Flowrate", "Pressure", "Temperature"})

	for _, row := range detailRows(rows) {
		pdf.CellFormat(widths[0], 6, row.Name, "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[1], 6, row.Type, "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", row.Flowrate), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", row.Pressure), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", row.Temperature), "1", 0, "C", true, 0, "")
		pdf.Ln(-1)
	}
}
