// Package extract turns uploaded PDF and plain-text files into document text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Kind is the declared media type of an upload.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type (only PDF and TXT allowed)")
	ErrExtraction        = errors.New("text extraction failed")
	// ErrDecoding is reported for plain text that is not valid UTF-8.
	// It also matches ErrExtraction.
	ErrDecoding = fmt.Errorf("%w: invalid UTF-8", ErrExtraction)
)

// DetectKind resolves the upload kind from the declared content type,
// falling back to the filename extension when no content type is sent.
func DetectKind(filename, contentType string) (Kind, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
		}
		switch mediaType {
		case "application/pdf":
			return KindPDF, nil
		case "text/plain":
			return KindText, nil
		case "application/octet-stream":
			// Browsers send this for unknown extensions.
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, mediaType)
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".txt":
		return KindText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// Extract returns the plain text of content interpreted as kind.
func Extract(content []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return extractPDF(content)
	case KindText:
		return decodeText(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}
}

func decodeText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", ErrDecoding
	}
	return string(content), nil
}

// extractPDF joins the text layer of every page with newlines. Pages without
// a content stream contribute an empty string so page boundaries are kept.
func extractPDF(content []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, pageNum, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}
