package reader

import "github.com/byte-squad-abac/bookreader/internal/gesture"

// Zoom bounds and steps, as percentages of the baseline page width.
const (
	MinZoom  = 50.0
	MaxZoom  = 200.0
	ZoomStep = 25.0

	// DoubleTapZoom is the magnified level a double-tap toggles to.
	DoubleTapZoom = 150.0
)

// Zoom returns the current zoom percentage.
func (r *Reader) Zoom() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Zoom
}

// SetZoom clamps pct to [MinZoom, MaxZoom] and applies it. The new level
// scales page widths and any later dimension preload; no-op on a closed
// reader.
func (r *Reader) SetZoom(pct float64) float64 {
	if pct < MinZoom {
		pct = MinZoom
	}
	if pct > MaxZoom {
		pct = MaxZoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.cfg.Zoom
	}
	r.cfg.Zoom = pct
	return pct
}

// ZoomGesture applies a completed zoom gesture: a pinch whose final scale
// clears the thresholds steps the zoom, a double-tap toggles between
// baseline and DoubleTapZoom. Returns the resulting zoom percentage and
// whether it changed.
func (r *Reader) ZoomGesture(ev gesture.Event) (float64, bool) {
	cur := r.Zoom()

	var next float64
	switch gesture.MapZoom(ev) {
	case gesture.ZoomIn:
		next = cur + ZoomStep
	case gesture.ZoomOut:
		next = cur - ZoomStep
	case gesture.ZoomToggle:
		if cur != DefaultZoom {
			next = DefaultZoom
		} else {
			next = DoubleTapZoom
		}
	default:
		return cur, false
	}

	next = r.SetZoom(next)
	return next, next != cur
}
