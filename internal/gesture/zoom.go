package gesture

// ZoomKind is the zoom action a completed gesture maps to.
type ZoomKind int

const (
	ZoomNone ZoomKind = iota
	// ZoomIn and ZoomOut step the zoom level one increment.
	ZoomIn
	ZoomOut
	// ZoomToggle flips between baseline and the magnified level.
	ZoomToggle
)

// MapZoom translates a completed gesture into a zoom action. A pinch zooms
// only once its final scale clears the thresholds; in-flight KindPinch
// events map to ZoomNone so a single gesture steps the zoom exactly once.
func MapZoom(ev Event) ZoomKind {
	switch ev.Kind {
	case KindDoubleTap:
		return ZoomToggle
	case KindPinchEnd:
		if ev.Scale > PinchZoomInScale {
			return ZoomIn
		}
		if ev.Scale < PinchZoomOutScale {
			return ZoomOut
		}
	}
	return ZoomNone
}
