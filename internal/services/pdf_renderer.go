package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"alfredoptarigan/cv-project/internal/models"
)

type PDFRenderer interface {
	Render(cv *models.CV) ([]byte, error)
}

type pdfRenderer struct{}

func NewPDFRenderer() PDFRenderer {
	return &pdfRenderer{}
}

// Render lays the CV out on A4 pages using the core Helvetica font.
func (r *pdfRenderer) Render(cv *models.CV) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetTitle(cv.FullName()+" CV", true)
	doc.SetAuthor(cv.FullName(), true)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 22)
	doc.CellFormat(0, 12, tr(cv.FullName()), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(90, 90, 90)
	doc.MultiCell(0, 5, tr(cv.Contacts), "", "L", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(4)

	sections := []struct {
		title string
		body  string
	}{
		{"About", cv.Bio},
		{"Skills", strings.Join(models.SplitSkills(cv.Skills, 0), " | ")},
		{"Projects", cv.Projects},
	}
	for _, section := range sections {
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 8, tr(section.title), "B", 1, "L", false, 0, "")
		doc.Ln(2)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(section.body), "", "L", false)
		doc.Ln(4)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
