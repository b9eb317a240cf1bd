// Package letter pulls petition text out of uploaded letters (plain text or PDF).
package letter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/ledongthuc/pdf"
)

const DefaultMaxBytes = 5 << 20

type Extractor struct {
	maxBytes int64
}

func NewExtractor(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{maxBytes: maxBytes}
}

func (e *Extractor) Extract(ctx context.Context, filename string, body io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read letter: %w", err)
	}
	if int64(len(raw)) > e.maxBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "read letter", fmt.Errorf("%s exceeds %d bytes", filename, e.maxBytes))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".text", ".md":
		text, err = extractPlain(raw)
	case ".pdf":
		text, err = extractPDF(raw)
	default:
		err = fmt.Errorf("unsupported letter format %q", ext)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract letter "+filepath.Base(filename), err)
	}
	return collapseWhitespace(text), nil
}

func extractPlain(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return "", errors.New("letter is not valid UTF-8 text")
	}
	return string(raw), nil
}

// extractPDF skips pages that fail to decode; image-only PDFs yield an error.
func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("pdf with %d pages has no extractable text", reader.NumPage())
	}
	return sb.String(), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
