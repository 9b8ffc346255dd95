package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// EPUB is an open EPUB book. "Page" is approximated by spine-item index, so
// progress through an EPUB is coarser-grained than through a PDF.
type EPUB struct {
	title    string
	author   string
	chapters []Chapter
	closed   bool
}

// Chapter is one spine item: a content document in reading order.
type Chapter struct {
	ID      string
	Index   int
	Href    string
	Content []byte
}

// containerXML locates the OPF package document inside the archive.
type containerXML struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// opfPackage is the subset of the OPF package document we need: metadata,
// the manifest (id -> href), and the spine (reading order).
type opfPackage struct {
	Metadata struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// OpenEPUB parses the EPUB container, its OPF package, and loads every spine
// item. Spine items whose content files are missing are skipped rather than
// failing the whole book.
func OpenEPUB(data []byte) (*EPUB, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	opfPath, err := epubContainerPath(zr)
	if err != nil {
		return nil, err
	}

	opfData, err := zipFile(zr, opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: missing package document %s", ErrInvalidDocument, opfPath)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	manifest := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		manifest[item.ID] = item.Href
	}

	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	book := &EPUB{
		title:  strings.TrimSpace(pkg.Metadata.Title),
		author: strings.TrimSpace(pkg.Metadata.Creator),
	}
	for i, ref := range pkg.Spine.ItemRefs {
		href, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		resolved := resolveHref(baseDir, href)
		content, err := zipFile(zr, resolved)
		if err != nil {
			continue
		}
		book.chapters = append(book.chapters, Chapter{
			ID:      ref.IDRef,
			Index:   i,
			Href:    resolved,
			Content: content,
		})
	}

	if len(book.chapters) == 0 {
		return nil, fmt.Errorf("%w: empty spine", ErrInvalidDocument)
	}
	return book, nil
}

func epubContainerPath(zr *zip.Reader) (string, error) {
	data, err := zipFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("%w: missing META-INF/container.xml", ErrInvalidDocument)
	}
	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("%w: container has no rootfile", ErrInvalidDocument)
	}
	return c.Rootfiles[0].FullPath, nil
}

func resolveHref(baseDir, href string) string {
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}
	if baseDir == "" {
		return href
	}
	return path.Join(baseDir, href)
}

func zipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file %q not in archive", name)
}

// isEPUBArchive reports whether the zip payload looks like an EPUB.
func isEPUBArchive(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err != nil {
				return false
			}
			content, err := io.ReadAll(rc)
			rc.Close()
			return err == nil && strings.TrimSpace(string(content)) == "application/epub+zip"
		}
		if f.Name == "META-INF/container.xml" {
			return true
		}
	}
	return false
}

func (e *EPUB) Format() Format { return FormatEPUB }

// PageCount returns the spine length.
func (e *EPUB) PageCount() int { return len(e.chapters) }

// Title returns the book title from the OPF metadata, if any.
func (e *EPUB) Title() string { return e.title }

// Author returns the primary creator from the OPF metadata, if any.
func (e *EPUB) Author() string { return e.author }

// Chapter returns the spine item for 1-based page n.
func (e *EPUB) Chapter(n int) (Chapter, error) {
	if e.closed {
		return Chapter{}, ErrClosed
	}
	if n < 1 || n > len(e.chapters) {
		return Chapter{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(e.chapters))
	}
	return e.chapters[n-1], nil
}

// Close drops the loaded chapter content.
func (e *EPUB) Close() error {
	e.chapters = nil
	e.closed = true
	return nil
}
