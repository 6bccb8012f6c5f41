package resume

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/encoding/charmap"
)

const (
	encodingUTF8   = "utf-8"
	encodingLatin1 = "latin-1"
	encodingPDF    = "pdf"
	encodingDOCX   = "docx"
)

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxBreak        = regexp.MustCompile(`<w:(?:br|tab|cr)\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	xmlEntities      = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

// decodeDocument turns raw bytes into text, choosing the decoder by file
// extension. It returns the decoder name for logging.
func decodeDocument(path string, data []byte) (string, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := pdfText(data)
		return text, encodingPDF, err
	case ".docx":
		text, err := docxText(data)
		return text, encodingDOCX, err
	default:
		return decodeText(data)
	}
}

// decodeText decodes UTF-8 and falls back to ISO-8859-1, which maps every
// byte to a rune and so preserves the input.
func decodeText(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		return string(data), encodingUTF8, nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", encodingLatin1, fmt.Errorf("latin-1 fallback: %w", err)
	}

	return string(out), encodingLatin1, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	return string(out), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent()), nil
}

// docxPlainText strips WordprocessingML markup, keeping paragraph breaks.
func docxPlainText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxBreak.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return xmlEntities.Replace(content)
}
