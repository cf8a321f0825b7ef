package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrDecode is returned when a document yields no usable text.
var ErrDecode = errors.New("document decode failed")

// Decoder turns an uploaded file into cleaned plain text.
type Decoder interface {
	Decode(ctx context.Context, filename string, data []byte) (string, error)
}

// Supported reports whether filename has an extension NewDecoder can handle.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

type extensionDecoder struct {
	pdf  Decoder
	text Decoder
}

// NewDecoder dispatches on file extension: PDF via ledongthuc/pdf, .txt as UTF-8.
func NewDecoder() Decoder {
	return &extensionDecoder{pdf: PDFDecoder{}, text: TextDecoder{}}
}

func (d *extensionDecoder) Decode(ctx context.Context, filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return d.pdf.Decode(ctx, filename, data)
	case ".txt":
		return d.text.Decode(ctx, filename, data)
	}
	return "", fmt.Errorf("%w: unsupported file type %q", ErrDecode, filepath.Ext(filename))
}

type PDFDecoder struct{}

func (PDFDecoder) Decode(ctx context.Context, filename string, data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %s: %v", ErrDecode, filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecode, filename, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecode, filename, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecode, filename, err)
	}

	return finish(filename, buf.String())
}

type TextDecoder struct{}

func (TextDecoder) Decode(ctx context.Context, filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrDecode, filename)
	}
	return finish(filename, string(data))
}

func finish(filename, raw string) (string, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return "", fmt.Errorf("%w: %s: no text content found", ErrDecode, filename)
	}
	return cleaned, nil
}
