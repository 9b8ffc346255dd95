package document

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDF is an open PDF document. The page count is read eagerly; per-page
// dimensions are parsed lazily on first measurement because extracting them
// walks the whole page tree and large scans should open fast.
//
// PDF is the only format with real fixed-size pages, so it is the only
// handle that implements the geometry measurer.
type PDF struct {
	mu        sync.Mutex
	data      []byte
	pageCount int
	dims      []types.Dim
	closed    bool
}

// OpenPDF validates the payload and reads its page count.
func OpenPDF(data []byte) (*PDF, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidDocument)
	}
	return &PDF{data: data, pageCount: count}, nil
}

func (p *PDF) Format() Format { return FormatPDF }

// PageCount returns the true page count.
func (p *PDF) PageCount() int { return p.pageCount }

// PageSize returns the native media-box size of a page in points.
// Implements geometry.Measurer.
func (p *PDF) PageSize(ctx context.Context, page int) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if page < 1 || page > p.pageCount {
		return 0, 0, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, p.pageCount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, 0, ErrClosed
	}
	if p.dims == nil {
		dims, err := api.PageDims(bytes.NewReader(p.data), nil)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		p.dims = dims
	}
	if page > len(p.dims) {
		return 0, 0, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, len(p.dims))
	}
	d := p.dims[page-1]
	return d.Width, d.Height, nil
}

// Close releases the payload. The underlying parser holds no native
// resources, but dropping the byte slice matters for large scans kept open
// across many documents.
func (p *PDF) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = nil
	p.dims = nil
	p.closed = true
	return nil
}
