package reader

import "testing"

func TestRenderWindowSlots(t *testing.T) {
	r := newTestReader(t, 100, nil)
	avg := r.Geometry().AveragePageHeight() + r.Geometry().Margin()
	r.HandleScroll(Viewport{ScrollTop: 49.5 * avg, ClientHeight: 800, ScrollHeight: 100 * avg})

	slots := r.RenderWindow()
	if len(slots) != 100 {
		t.Fatalf("got %d slots, want one per page", len(slots))
	}

	vr := r.VisibleRange()
	mounted := 0
	for i, s := range slots {
		if s.Page != i+1 {
			t.Fatalf("slot %d has page %d", i, s.Page)
		}
		if s.Mounted != vr.Contains(s.Page) {
			t.Errorf("page %d mounted = %v, visible range %+v", s.Page, s.Mounted, vr)
		}
		if s.Mounted {
			mounted++
		}
		if s.Height <= 0 {
			t.Errorf("page %d has non-positive height", s.Page)
		}
	}
	if mounted == 0 || mounted == len(slots) {
		t.Errorf("mounted %d of %d pages, want a proper window", mounted, len(slots))
	}
}

func TestRenderWindowPositionsAreCumulative(t *testing.T) {
	r := newTestReader(t, 30, nil)
	r.RecordPageHeight(3, 900)
	r.RecordPageHeight(7, 450)

	slots := r.RenderWindow()
	margin := r.Geometry().Margin()
	for i := 1; i < len(slots); i++ {
		want := slots[i-1].Top + slots[i-1].Height + margin
		if diff := slots[i].Top - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("slot %d top = %v, want %v", i+1, slots[i].Top, want)
		}
	}
	if slots[0].Top != 0 {
		t.Errorf("first slot top = %v, want 0", slots[0].Top)
	}
}

func TestRenderWindowMatchesPagePosition(t *testing.T) {
	r := newTestReader(t, 20, nil)
	r.RecordPageHeight(5, 1234)

	slots := r.RenderWindow()
	for _, p := range []int{1, 5, 6, 20} {
		want := r.Geometry().PagePosition(p)
		if got := slots[p-1].Top; got != want {
			t.Errorf("slot top for page %d = %v, want PagePosition = %v", p, got, want)
		}
	}
}
