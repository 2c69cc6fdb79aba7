package extractor

import (
	"os"

	"code.sajari.com/docconv"

	"studyforge/internal/domain/entity"
)

// extractWord converts a Word document (legacy .doc or OOXML .docx) at path
// to plain text. Converter failures are wrapped as an ExtractionError for the
// original format tag; no partial text is ever returned.
func extractWord(path, tag string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &entity.ExtractionError{Format: tag, Err: err}
	}
	defer func() { _ = f.Close() }()

	var body string
	switch tag {
	case "docx":
		body, _, err = docconv.ConvertDocx(f)
	default:
		body, _, err = docconv.ConvertDoc(f)
	}
	if err != nil {
		return "", &entity.ExtractionError{Format: tag, Err: err}
	}
	return body, nil
}
