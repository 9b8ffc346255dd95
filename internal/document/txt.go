package document

import "strings"

// TXT is a plain-text document rendered as one flowed column. Pages are
// purely cosmetic: a word-count heuristic that gives the host something to
// show in a page-number display.
type TXT struct {
	text      string
	wordCount int
	pageCount int
}

// OpenTXT wraps raw text in a document handle.
func OpenTXT(text string, opts Options) *TXT {
	opts = opts.withDefaults()

	words := len(strings.Fields(text))
	pages := (words + opts.WordsPerPage - 1) / opts.WordsPerPage
	if pages < 1 {
		pages = 1
	}

	return &TXT{
		text:      text,
		wordCount: words,
		pageCount: pages,
	}
}

func (t *TXT) Format() Format { return FormatTXT }

// PageCount returns the word-count heuristic, never less than 1.
func (t *TXT) PageCount() int { return t.pageCount }

// WordCount returns the number of whitespace-separated words.
func (t *TXT) WordCount() int { return t.wordCount }

// Text returns the raw text.
func (t *TXT) Text() string { return t.text }

func (t *TXT) Close() error {
	t.text = ""
	return nil
}
