// Package gesture translates raw pointer and keyboard input into reader
// commands. Classification is pure state-machine logic shared by every
// format reader; it knows nothing about pages or geometry.
package gesture

import (
	"math"
	"time"
)

// Classification thresholds.
const (
	// DoubleTapDelay is the window in which a second tap upgrades to a
	// double-tap.
	DoubleTapDelay = 300 * time.Millisecond

	// DoubleTapRadius is how far the second tap may land from the first.
	DoubleTapRadius = 40.0

	// SwipeMinDistance is the displacement below which a touch is a tap.
	SwipeMinDistance = 50.0

	// SwipeMaxDuration is the time budget for a swipe; slower drags are
	// treated as scrolling and ignored here.
	SwipeMaxDuration = 500 * time.Millisecond

	// PinchZoomInScale and PinchZoomOutScale are the final-scale thresholds
	// at which a pinch triggers a zoom step.
	PinchZoomInScale  = 1.2
	PinchZoomOutScale = 0.8
)

// Point is a touch position in viewport coordinates.
type Point struct {
	X, Y float64
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Kind is the classified gesture.
type Kind int

const (
	KindNone Kind = iota
	KindTap
	KindDoubleTap
	KindSwipe
	KindPinch    // continuous, reported while both fingers are down
	KindPinchEnd // final scale on release
)

// Direction is the dominant axis of a swipe.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

// Event is one classified gesture.
type Event struct {
	Kind      Kind
	Direction Direction
	// Scale is the ratio of current to initial inter-finger distance;
	// only meaningful for KindPinch and KindPinchEnd.
	Scale float64
}

// Tracker classifies one touch sequence at a time. Not safe for concurrent
// use; input events for a single viewport arrive serially anyway.
type Tracker struct {
	now func() time.Time

	active     int
	start      Point
	startTime  time.Time
	pinchStart float64
	pinchScale float64

	lastTap     Point
	lastTapTime time.Time
}

// NewTracker returns a Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Begin starts a touch sequence with the given contact points.
// Two simultaneous contacts begin a pinch; more than two are ignored.
func (t *Tracker) Begin(points []Point) {
	t.active = len(points)
	t.pinchStart = 0
	t.pinchScale = 1
	if len(points) >= 1 {
		t.start = points[0]
		t.startTime = t.now()
	}
	if len(points) == 2 {
		t.pinchStart = distance(points[0], points[1])
	}
}

// Move updates the sequence. While a pinch is active it reports the running
// scale factor; single-touch moves produce no event until End.
func (t *Tracker) Move(points []Point) Event {
	if t.active == 2 && len(points) == 2 && t.pinchStart > 0 {
		t.pinchScale = distance(points[0], points[1]) / t.pinchStart
		return Event{Kind: KindPinch, Scale: t.pinchScale}
	}
	return Event{Kind: KindNone}
}

// End finishes the sequence at the given release point and classifies it.
func (t *Tracker) End(release Point) Event {
	defer func() { t.active = 0 }()

	if t.active == 2 {
		return Event{Kind: KindPinchEnd, Scale: t.pinchScale}
	}
	if t.active != 1 {
		return Event{Kind: KindNone}
	}

	elapsed := t.now().Sub(t.startTime)
	disp := distance(release, t.start)

	if disp >= SwipeMinDistance && elapsed <= SwipeMaxDuration {
		return Event{Kind: KindSwipe, Direction: swipeDirection(t.start, release)}
	}
	if disp >= SwipeMinDistance {
		// Slow drag: neither tap nor swipe.
		return Event{Kind: KindNone}
	}

	now := t.now()
	if now.Sub(t.lastTapTime) <= DoubleTapDelay && distance(release, t.lastTap) <= DoubleTapRadius {
		t.lastTapTime = time.Time{}
		return Event{Kind: KindDoubleTap}
	}
	t.lastTap = release
	t.lastTapTime = now
	return Event{Kind: KindTap}
}

func swipeDirection(from, to Point) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return DirectionRight
		}
		return DirectionLeft
	}
	if dy > 0 {
		return DirectionDown
	}
	return DirectionUp
}
