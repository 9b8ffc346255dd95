// Package document opens uploaded book payloads and exposes them behind a
// format-agnostic handle. Parsing correctness is delegated to the underlying
// libraries; this package only extracts what the reader engine needs: a page
// count, per-page dimensions where the format has real pages, and the content
// itself for flowed formats.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

var (
	// ErrInvalidDocument means the payload failed to open or parse.
	// Terminal for the document instance; there is no automatic retry.
	ErrInvalidDocument = errors.New("document: invalid or corrupted payload")

	// ErrUnsupportedFormat means the payload matches no supported format.
	ErrUnsupportedFormat = errors.New("document: unsupported format")

	// ErrClosed means the handle was used after Close.
	ErrClosed = errors.New("document: closed")

	// ErrPageOutOfRange means a page number outside [1, PageCount] was requested.
	ErrPageOutOfRange = errors.New("document: page out of range")
)

// Document is an open, parsed document. A handle is owned by exactly one
// reader and must be released with Close; it is never shared.
type Document interface {
	Format() Format
	// PageCount is the number of pages, spine items, or estimated pages
	// depending on the format.
	PageCount() int
	Close() error
}

// Options tunes how flowed formats estimate their cosmetic page counts.
// Zero values fall back to the package defaults.
type Options struct {
	// CharsPerPage is the assumed characters per page for DOCX.
	CharsPerPage int
	// WordsPerPage is the assumed words per page for TXT.
	WordsPerPage int
}

const (
	defaultCharsPerPage = 3000
	defaultWordsPerPage = 500
)

func (o Options) withDefaults() Options {
	if o.CharsPerPage <= 0 {
		o.CharsPerPage = defaultCharsPerPage
	}
	if o.WordsPerPage <= 0 {
		o.WordsPerPage = defaultWordsPerPage
	}
	return o
}

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// DetectFormat sniffs the document format from the payload's leading bytes.
// ZIP containers are disambiguated by their internal structure (EPUB carries
// a mimetype/OPF, DOCX carries word/document.xml). Plain UTF-8 text falls
// through to TXT.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF, nil
	case bytes.HasPrefix(data, zipMagic):
		if isEPUBArchive(data) {
			return FormatEPUB, nil
		}
		if isDOCXArchive(data) {
			return FormatDOCX, nil
		}
		return "", fmt.Errorf("%w: unrecognized zip container", ErrUnsupportedFormat)
	case utf8.Valid(data):
		return FormatTXT, nil
	}
	return "", ErrUnsupportedFormat
}

// Open parses the payload as the given format. Pass an empty format to sniff
// it from the payload.
func Open(data []byte, format Format, opts Options) (Document, error) {
	if format == "" {
		detected, err := DetectFormat(data)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case FormatPDF:
		return OpenPDF(data)
	case FormatEPUB:
		return OpenEPUB(data)
	case FormatDOCX:
		return OpenDOCX(data, opts)
	case FormatTXT:
		return OpenTXT(string(data), opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
