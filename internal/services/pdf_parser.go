package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	Inspect(data []byte) (*PDFContent, error)
	InspectFile(filePath string) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	Size      int64
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) InspectFile(filePath string) (*PDFContent, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return p.Inspect(data)
}

// Inspect opens an in-memory PDF and reports its page count and any plain text
// that could be extracted.
func (p *pdfParserService) Inspect(data []byte) (*PDFContent, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := r.NumPage()
	if totalPage == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		text := pageText(r.Page(pageIndex))
		if text == "" {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return &PDFContent{
		Text:      CleanText(textBuilder.String()),
		PageCount: totalPage,
		Size:      int64(len(data)),
	}, nil
}

// pageText returns "" for pages the reader cannot decode; the reader panics on
// some font encodings.
func pageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// CleanText drops blank lines and surrounding whitespace.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
