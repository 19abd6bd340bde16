package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/caplink/userpulse/internal/domain/aggregate"
	"github.com/caplink/userpulse/internal/domain/model"
)

// PDF layout constants (A4 portrait, millimeters).
const (
	pdfTitleSize   = 18.0
	pdfHeadingSize = 12.0
	pdfBodySize    = 10.0
	pdfLineHeight  = 7.0
	pdfTitleGap    = 6.0

	colWidthID      = 20.0
	colWidthName    = 55.0
	colWidthCompany = 50.0
	colWidthPosts   = 28.0
	colWidthAvg     = 32.0
)

// writePDF renders the metrics table as a PDF document.
func writePDF(path string, ms []model.UserMetrics, generatedAt time.Time) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("User Analytics Report", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", pdfTitleSize)
	doc.CellFormat(0, 10, "User Analytics Report", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", pdfBodySize)
	doc.CellFormat(0, 6, "Generated "+generatedAt.Format("2006-01-02 15:04:05 MST"), "", 1, "C", false, 0, "")
	doc.Ln(pdfTitleGap)

	var totalPosts int
	for _, m := range ms {
		totalPosts += m.TotalPosts
	}

	doc.SetFont("Helvetica", "B", pdfHeadingSize)
	doc.CellFormat(0, pdfLineHeight, "Summary", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", pdfBodySize)
	doc.CellFormat(0, pdfLineHeight, fmt.Sprintf("Users: %d", len(ms)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, pdfLineHeight, fmt.Sprintf("Total posts: %d", totalPosts), "", 1, "L", false, 0, "")
	doc.CellFormat(0, pdfLineHeight, fmt.Sprintf("Average post length: %.1f chars", aggregate.MeanAvgChars(ms)), "", 1, "L", false, 0, "")
	doc.Ln(pdfTitleGap)

	doc.SetFont("Helvetica", "B", pdfBodySize)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(colWidthID, pdfLineHeight, "User ID", "1", 0, "C", true, 0, "")
	doc.CellFormat(colWidthName, pdfLineHeight, "Name", "1", 0, "C", true, 0, "")
	doc.CellFormat(colWidthCompany, pdfLineHeight, "Company", "1", 0, "C", true, 0, "")
	doc.CellFormat(colWidthPosts, pdfLineHeight, "Posts", "1", 0, "C", true, 0, "")
	doc.CellFormat(colWidthAvg, pdfLineHeight, "Avg Chars", "1", 1, "C", true, 0, "")

	doc.SetFont("Helvetica", "", pdfBodySize)
	for _, m := range ms {
		doc.CellFormat(colWidthID, pdfLineHeight, strconv.FormatInt(m.UserID, 10), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidthName, pdfLineHeight, m.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidthCompany, pdfLineHeight, m.Company, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidthPosts, pdfLineHeight, strconv.Itoa(m.TotalPosts), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidthAvg, pdfLineHeight, fmt.Sprintf("%.1f", m.AvgChars), "1", 1, "R", false, 0, "")
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}

	return nil
}
