package ingest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFPages returns the plain text of each page of the PDF at path.
// Pages with no extractable content come back as empty strings so page
// numbering stays aligned with the document.
func ExtractPDFPages(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read PDF %s: %w", path, err)
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d of %s: %w", i+1, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
