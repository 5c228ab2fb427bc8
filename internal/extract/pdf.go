// Package extract pulls plain text out of uploaded files.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/kortex-labs/kortex/internal/domain"
)

// PDFExtractor extracts plain text from PDF bytes.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor instance
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract parses the PDF and returns its concatenated text content.
// Malformed input fails with ErrUnreadableDocument.
func (e *PDFExtractor) Extract(ctx context.Context, fileBytes []byte) (text string, err error) {
	// The parser panics on some malformed files; turn that into the
	// unreadable-document error instead of crashing the request.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}

	return sb.String(), nil
}
