package document_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/testutil"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    document.Format
		wantErr bool
	}{
		{"pdf magic", testutil.MinimalPDF(1, 612, 792), document.FormatPDF, false},
		{"epub archive", testutil.MinimalEPUB("Book", []string{"hello"}), document.FormatEPUB, false},
		{"docx archive", testutil.MinimalDOCX([]string{"hello"}), document.FormatDOCX, false},
		{"plain text", []byte("just some text"), document.FormatTXT, false},
		{"binary junk", []byte{0xff, 0xfe, 0x00, 0x01, 0x80}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := document.DetectFormat(tt.data)
			if tt.wantErr {
				if !errors.Is(err, document.ErrUnsupportedFormat) {
					t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenSniffsFormat(t *testing.T) {
	doc, err := document.Open(testutil.MinimalEPUB("Book", []string{"a", "b"}), "", document.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer doc.Close()

	if doc.Format() != document.FormatEPUB {
		t.Errorf("Format = %q, want epub", doc.Format())
	}
	if doc.PageCount() != 2 {
		t.Errorf("PageCount = %d, want 2", doc.PageCount())
	}
}

func TestOpenPDF(t *testing.T) {
	data := testutil.MinimalPDF(7, 612, 792)

	doc, err := document.OpenPDF(data)
	if err != nil {
		t.Fatalf("OpenPDF: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 7 {
		t.Errorf("PageCount = %d, want 7", doc.PageCount())
	}

	w, h, err := doc.PageSize(context.Background(), 3)
	if err != nil {
		t.Fatalf("PageSize: %v", err)
	}
	if w != 612 || h != 792 {
		t.Errorf("PageSize = %v x %v, want 612 x 792", w, h)
	}

	if _, _, err := doc.PageSize(context.Background(), 0); !errors.Is(err, document.ErrPageOutOfRange) {
		t.Errorf("PageSize(0) err = %v, want ErrPageOutOfRange", err)
	}
	if _, _, err := doc.PageSize(context.Background(), 8); !errors.Is(err, document.ErrPageOutOfRange) {
		t.Errorf("PageSize(8) err = %v, want ErrPageOutOfRange", err)
	}
}

func TestOpenPDFInvalid(t *testing.T) {
	_, err := document.OpenPDF([]byte("%PDF-1.4 this is not a real pdf"))
	if !errors.Is(err, document.ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestPDFClosedHandle(t *testing.T) {
	doc, err := document.OpenPDF(testutil.MinimalPDF(2, 612, 792))
	if err != nil {
		t.Fatalf("OpenPDF: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := doc.PageSize(context.Background(), 1); !errors.Is(err, document.ErrClosed) {
		t.Errorf("PageSize after Close err = %v, want ErrClosed", err)
	}
}

func TestOpenEPUB(t *testing.T) {
	data := testutil.MinimalEPUB("The Glass Palace", []string{"one", "two", "three"})

	book, err := document.OpenEPUB(data)
	if err != nil {
		t.Fatalf("OpenEPUB: %v", err)
	}
	defer book.Close()

	if book.PageCount() != 3 {
		t.Errorf("PageCount = %d, want 3 spine items", book.PageCount())
	}
	if book.Title() != "The Glass Palace" {
		t.Errorf("Title = %q", book.Title())
	}

	ch, err := book.Chapter(2)
	if err != nil {
		t.Fatalf("Chapter(2): %v", err)
	}
	if !strings.Contains(string(ch.Content), "two") {
		t.Errorf("chapter 2 content = %q, want body containing %q", ch.Content, "two")
	}

	if _, err := book.Chapter(4); !errors.Is(err, document.ErrPageOutOfRange) {
		t.Errorf("Chapter(4) err = %v, want ErrPageOutOfRange", err)
	}
}

func TestOpenEPUBInvalid(t *testing.T) {
	if _, err := document.OpenEPUB([]byte("PK\x03\x04 not really a zip")); !errors.Is(err, document.ErrInvalidDocument) {
		t.Errorf("garbage err = %v, want ErrInvalidDocument", err)
	}
	if _, err := document.OpenEPUB(testutil.MinimalDOCX([]string{"x"})); !errors.Is(err, document.ErrInvalidDocument) {
		t.Errorf("docx payload err = %v, want ErrInvalidDocument", err)
	}
}

func TestOpenDOCXPageEstimate(t *testing.T) {
	// 10 paragraphs of 100 characters with chars-per-page 300 -> 4 pages.
	para := strings.Repeat("k", 100)
	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = para
	}

	doc, err := document.OpenDOCX(testutil.MinimalDOCX(paragraphs), document.Options{CharsPerPage: 300})
	if err != nil {
		t.Fatalf("OpenDOCX: %v", err)
	}
	defer doc.Close()

	if doc.CharCount() != 1000 {
		t.Errorf("CharCount = %d, want 1000", doc.CharCount())
	}
	if doc.PageCount() != 4 {
		t.Errorf("PageCount = %d, want 4", doc.PageCount())
	}
	if !strings.Contains(doc.HTML(), "<p>") {
		t.Errorf("HTML output missing paragraph tags")
	}
}

func TestOpenDOCXEmptyIsOnePage(t *testing.T) {
	doc, err := document.OpenDOCX(testutil.MinimalDOCX(nil), document.Options{})
	if err != nil {
		t.Fatalf("OpenDOCX: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 1 {
		t.Errorf("PageCount = %d, want minimum 1", doc.PageCount())
	}
}

func TestOpenTXTPageEstimate(t *testing.T) {
	tests := []struct {
		name      string
		words     int
		perPage   int
		wantPages int
	}{
		{"empty", 0, 500, 1},
		{"under one page", 120, 500, 1},
		{"exactly one page", 500, 500, 1},
		{"just over", 501, 500, 2},
		{"many", 2600, 500, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.TrimSpace(strings.Repeat("word ", tt.words))
			doc := document.OpenTXT(text, document.Options{WordsPerPage: tt.perPage})
			if doc.WordCount() != tt.words {
				t.Errorf("WordCount = %d, want %d", doc.WordCount(), tt.words)
			}
			if doc.PageCount() != tt.wantPages {
				t.Errorf("PageCount = %d, want %d", doc.PageCount(), tt.wantPages)
			}
		})
	}
}
