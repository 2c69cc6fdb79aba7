package extractor

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"studyforge/internal/domain/entity"
)

// extractPDF decodes the PDF at path page by page and returns the text.
// Text items within a page are joined by a single space, pages by a newline.
// A PDF that yields no text at all (scanned-image-only documents) is an
// extraction failure, not an empty success.
func extractPDF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &entity.ExtractionError{Format: "pdf", Err: err}
	}
	if len(data) == 0 {
		return "", &entity.ExtractionError{Format: "pdf", Err: fmt.Errorf("file is empty")}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &entity.ExtractionError{Format: "pdf", Err: err}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		items := page.Content().Text
		words := make([]string, 0, len(items))
		for _, item := range items {
			words = append(words, item.S)
		}
		pages = append(pages, strings.Join(words, " "))
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", &entity.ExtractionError{Format: "pdf", Err: entity.ErrEmptyDocument}
	}
	return text, nil
}
