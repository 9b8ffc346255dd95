package geometry

import (
	"context"
	"time"
)

// DefaultPreloadBatchSize is how many pages are measured between yields.
const DefaultPreloadBatchSize = 10

// Measurer reports the native size of a page at scale 1.0.
// The PDF document handle implements this; flowed formats do not need to.
type Measurer interface {
	PageSize(ctx context.Context, page int) (width, height float64, err error)
}

// ProgressFunc receives preload progress as a fraction in [0, 1].
type ProgressFunc func(fraction float64)

// PreloadDimensions walks every page of the document and records its true
// height, scaled by the given zoom scale (1.0 = baseline). Pages are measured
// in fixed-size batches with a brief yield between batches so a long
// measurement pass over hundreds of pages never starves other work.
//
// The pass is idempotent: pages whose height is already known are skipped.
// A page that fails to measure gets the estimated fallback height recorded
// instead, so position math never encounters a permanently unknown page.
// Cancellation via ctx stops the walk between batches.
func (m *Manager) PreloadDimensions(ctx context.Context, meas Measurer, scale float64, onProgress ProgressFunc) error {
	if scale <= 0 {
		scale = 1.0
	}
	batch := m.cfg.PreloadBatchSize
	total := m.totalPages

	report := func(done int) {
		if onProgress != nil {
			onProgress(float64(done) / float64(total))
		}
	}

	for start := 1; start <= total; start += batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + batch - 1
		if end > total {
			end = total
		}
		for page := start; page <= end; page++ {
			if m.HasHeight(page) {
				continue
			}
			_, h, err := meas.PageSize(ctx, page)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Degrade to the estimate rather than aborting the pass.
				m.RecordPageHeight(page, m.cfg.EstimatedHeight)
				continue
			}
			m.RecordPageHeight(page, h*scale)
		}
		if end < total {
			report(end)
			// Cooperative yield between batches.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond):
			}
		}
	}

	report(total)
	return nil
}
