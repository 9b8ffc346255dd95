package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"
)

// DOCX is a Word document parsed once into paragraphs. There is no
// virtualization for this format: the whole converted document is one flowed
// body, and the page count is a display heuristic derived from character
// count, not a layout fact.
type DOCX struct {
	paragraphs []string
	charCount  int
	pageCount  int
	closed     bool
}

// OpenDOCX extracts the main document part and converts it to paragraphs.
func OpenDOCX(data []byte, opts Options) (*DOCX, error) {
	opts = opts.withDefaults()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	body, err := zipFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: missing word/document.xml", ErrInvalidDocument)
	}

	paragraphs, err := docxParagraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	chars := 0
	for _, p := range paragraphs {
		chars += len([]rune(p))
	}

	pages := (chars + opts.CharsPerPage - 1) / opts.CharsPerPage
	if pages < 1 {
		pages = 1
	}

	return &DOCX{
		paragraphs: paragraphs,
		charCount:  chars,
		pageCount:  pages,
	}, nil
}

// docxParagraphs walks the WordprocessingML stream collecting text runs
// (w:t elements) and splitting on paragraph ends (w:p).
func docxParagraphs(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(current.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		paragraphs = append(paragraphs, s)
	}
	return paragraphs, nil
}

// isDOCXArchive reports whether the zip payload looks like a Word document.
func isDOCXArchive(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

func (d *DOCX) Format() Format { return FormatDOCX }

// PageCount returns the character-count heuristic, never less than 1.
func (d *DOCX) PageCount() int { return d.pageCount }

// CharCount returns the extracted character total.
func (d *DOCX) CharCount() int { return d.charCount }

// Text returns the document as plain text, one paragraph per line.
func (d *DOCX) Text() string {
	return strings.Join(d.paragraphs, "\n")
}

// HTML renders the paragraphs as a minimal HTML fragment, the shape the
// hosting page mounts as a single column.
func (d *DOCX) HTML() string {
	var b strings.Builder
	for _, p := range d.paragraphs {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>\n")
	}
	return b.String()
}

// Close drops the parsed content.
func (d *DOCX) Close() error {
	d.paragraphs = nil
	d.closed = true
	return nil
}
