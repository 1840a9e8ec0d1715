// Package reader extracts plain text from the document formats bibx accepts.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Kind identifies a document format.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindHTML Kind = "html"
)

// Document is the text extracted from one source file.
type Document struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
	Text string `json:"-"`
}

// KindFor maps a file name to its document kind by extension.
func KindFor(name string) (Kind, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".md", ".text":
		return KindText, nil
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	case ".html", ".htm", ".xhtml":
		return KindHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Read extracts the text of the file at path.
func Read(path string) (Document, error) {
	if _, err := KindFor(path); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ReadBytes(path, data)
}

// ReadBytes extracts text from in-memory file content. name is only used
// to pick the format.
func ReadBytes(name string, data []byte) (Document, error) {
	kind, err := KindFor(name)
	if err != nil {
		return Document{}, err
	}

	var text string
	switch kind {
	case KindText:
		text = decodeText(data)
	case KindPDF:
		text, err = extractPDF(bytes.NewReader(data), int64(len(data)))
	case KindDOCX:
		text, err = extractDOCX(bytes.NewReader(data), int64(len(data)))
	case KindHTML:
		text, err = extractHTML(bytes.NewReader(data))
	}
	if err != nil {
		return Document{}, fmt.Errorf("extracting %s text from %s: %w", kind, name, err)
	}

	return Document{Path: name, Kind: kind, Text: text}, nil
}

// decodeText drops a UTF-8 byte order mark and replaces invalid sequences.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}
