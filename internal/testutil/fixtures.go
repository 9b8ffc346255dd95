// Package testutil provides shared helpers for tests: fixture document
// payloads and server lifecycle utilities.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// MinimalPDF builds a structurally valid PDF with the given number of empty
// pages, all sized width x height points. Object offsets in the xref table
// are computed from the buffer as it is written, so the result validates.
func MinimalPDF(pages int, width, height float64) []byte {
	if pages < 1 {
		pages = 1
	}

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	var kids strings.Builder
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids.WriteString(" ")
		}
		fmt.Fprintf(&kids, "%d 0 R", 3+i)
	}
	obj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids.String(), pages))

	for i := 0; i < pages; i++ {
		obj(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << >> >>\nendobj\n",
			3+i, width, height))
	}

	xrefPos := buf.Len()
	size := len(offsets) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefPos)

	return buf.Bytes()
}

// MinimalEPUB builds an EPUB archive with one XHTML spine item per chapter
// body given.
func MinimalEPUB(title string, chapterBodies []string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	add("mimetype", "application/epub+zip")
	add("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spine strings.Builder
	for i := range chapterBodies {
		fmt.Fprintf(&manifest,
			`<item id="ch%d" href="chapter%d.xhtml" media-type="application/xhtml+xml"/>`+"\n", i+1, i+1)
		fmt.Fprintf(&spine, `<itemref idref="ch%d"/>`+"\n", i+1)
	}

	add("OEBPS/content.opf", fmt.Sprintf(`<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>%s</dc:title>
    <dc:creator>Test Author</dc:creator>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`, title, manifest.String(), spine.String()))

	for i, body := range chapterBodies {
		add(fmt.Sprintf("OEBPS/chapter%d.xhtml", i+1), fmt.Sprintf(
			`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"><body><p>%s</p></body></html>`, body))
	}

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// MinimalDOCX builds a Word archive whose main document part contains the
// given paragraphs.
func MinimalDOCX(paragraphs []string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	add("[Content_Types].xml", `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>\n", p)
	}
	add("word/document.xml", fmt.Sprintf(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
%s  </w:body>
</w:document>`, body.String()))

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
