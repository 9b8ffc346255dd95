package gesture

import (
	"testing"
	"time"
)

// fakeClock advances manually so classification windows are deterministic.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker() (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := NewTracker()
	tr.now = clock.now
	return tr, clock
}

func TestTap(t *testing.T) {
	tr, clock := newTestTracker()

	tr.Begin([]Point{{X: 100, Y: 200}})
	clock.advance(80 * time.Millisecond)
	ev := tr.End(Point{X: 103, Y: 198})

	if ev.Kind != KindTap {
		t.Fatalf("Kind = %v, want tap", ev.Kind)
	}
}

func TestDoubleTap(t *testing.T) {
	tr, clock := newTestTracker()

	tr.Begin([]Point{{X: 100, Y: 200}})
	ev := tr.End(Point{X: 100, Y: 200})
	if ev.Kind != KindTap {
		t.Fatalf("first tap Kind = %v, want tap", ev.Kind)
	}

	clock.advance(150 * time.Millisecond)
	tr.Begin([]Point{{X: 105, Y: 205}})
	ev = tr.End(Point{X: 105, Y: 205})
	if ev.Kind != KindDoubleTap {
		t.Fatalf("second tap Kind = %v, want double-tap", ev.Kind)
	}
}

func TestDoubleTapWindowExpires(t *testing.T) {
	tr, clock := newTestTracker()

	tr.Begin([]Point{{X: 100, Y: 200}})
	tr.End(Point{X: 100, Y: 200})

	clock.advance(DoubleTapDelay + 50*time.Millisecond)
	tr.Begin([]Point{{X: 100, Y: 200}})
	ev := tr.End(Point{X: 100, Y: 200})
	if ev.Kind != KindTap {
		t.Fatalf("late second tap Kind = %v, want plain tap", ev.Kind)
	}
}

func TestSwipeDirections(t *testing.T) {
	tests := []struct {
		name string
		from Point
		to   Point
		want Direction
	}{
		{"left", Point{300, 200}, Point{100, 210}, DirectionLeft},
		{"right", Point{100, 200}, Point{300, 190}, DirectionRight},
		{"up", Point{200, 400}, Point{210, 100}, DirectionUp},
		{"down", Point{200, 100}, Point{190, 400}, DirectionDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, clock := newTestTracker()
			tr.Begin([]Point{tt.from})
			clock.advance(120 * time.Millisecond)
			ev := tr.End(tt.to)
			if ev.Kind != KindSwipe {
				t.Fatalf("Kind = %v, want swipe", ev.Kind)
			}
			if ev.Direction != tt.want {
				t.Errorf("Direction = %v, want %v", ev.Direction, tt.want)
			}
		})
	}
}

func TestSlowDragIsNotASwipe(t *testing.T) {
	tr, clock := newTestTracker()

	tr.Begin([]Point{{X: 100, Y: 200}})
	clock.advance(SwipeMaxDuration + 200*time.Millisecond)
	ev := tr.End(Point{X: 400, Y: 200})
	if ev.Kind != KindNone {
		t.Fatalf("Kind = %v, want none for a slow drag", ev.Kind)
	}
}

func TestPinchScale(t *testing.T) {
	tr, _ := newTestTracker()

	// Starting inter-finger distance 100, current 130 -> scale 1.3.
	tr.Begin([]Point{{X: 100, Y: 100}, {X: 200, Y: 100}})
	ev := tr.Move([]Point{{X: 85, Y: 100}, {X: 215, Y: 100}})
	if ev.Kind != KindPinch {
		t.Fatalf("Kind = %v, want pinch", ev.Kind)
	}
	if ev.Scale < 1.299 || ev.Scale > 1.301 {
		t.Errorf("Scale = %v, want 1.3", ev.Scale)
	}
	if ev.Scale <= PinchZoomInScale {
		t.Errorf("Scale %v should exceed the zoom-in threshold %v", ev.Scale, PinchZoomInScale)
	}

	end := tr.End(Point{X: 85, Y: 100})
	if end.Kind != KindPinchEnd {
		t.Fatalf("Kind = %v, want pinch end", end.Kind)
	}
	if end.Scale < 1.299 || end.Scale > 1.301 {
		t.Errorf("final Scale = %v, want 1.3", end.Scale)
	}
}

func TestPinchIn(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Begin([]Point{{X: 0, Y: 0}, {X: 200, Y: 0}})
	ev := tr.Move([]Point{{X: 50, Y: 0}, {X: 190, Y: 0}})
	if ev.Kind != KindPinch {
		t.Fatalf("Kind = %v, want pinch", ev.Kind)
	}
	if ev.Scale >= PinchZoomOutScale {
		t.Errorf("Scale = %v, want below zoom-out threshold %v", ev.Scale, PinchZoomOutScale)
	}
}
