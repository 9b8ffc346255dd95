package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPageHeightFallback(t *testing.T) {
	m := NewManager(100, Config{})

	for _, page := range []int{1, 50, 100} {
		if h := m.PageHeight(page); h != DefaultEstimatedHeight {
			t.Errorf("PageHeight(%d) = %v, want fallback %v", page, h, DefaultEstimatedHeight)
		}
	}
}

func TestRecordPageHeightRoundTrip(t *testing.T) {
	m := NewManager(100, Config{})

	m.RecordPageHeight(7, 842.5)
	if h := m.PageHeight(7); h != 842.5 {
		t.Errorf("PageHeight(7) = %v, want 842.5", h)
	}

	// Re-recording replaces, not accumulates.
	m.RecordPageHeight(7, 600)
	if h := m.PageHeight(7); h != 600 {
		t.Errorf("PageHeight(7) after update = %v, want 600", h)
	}
	if got := m.MeasuredPages(); got != 1 {
		t.Errorf("MeasuredPages = %d, want 1", got)
	}
}

func TestRecordPageHeightRejectsInvalid(t *testing.T) {
	m := NewManager(10, Config{})

	m.RecordPageHeight(0, 500)
	m.RecordPageHeight(-3, 500)
	m.RecordPageHeight(11, 500)
	m.RecordPageHeight(5, 0)
	m.RecordPageHeight(5, -100)

	if got := m.MeasuredPages(); got != 0 {
		t.Errorf("MeasuredPages = %d, want 0 after invalid records", got)
	}
}

func TestAveragePageHeight(t *testing.T) {
	m := NewManager(10, Config{})

	if avg := m.AveragePageHeight(); avg != DefaultEstimatedHeight {
		t.Errorf("empty average = %v, want %v", avg, DefaultEstimatedHeight)
	}

	m.RecordPageHeight(1, 400)
	m.RecordPageHeight(2, 800)
	if avg := m.AveragePageHeight(); !almostEqual(avg, 600) {
		t.Errorf("average = %v, want 600", avg)
	}
}

func TestPagePositionPrefixProperty(t *testing.T) {
	m := NewManager(20, Config{PageMargin: 10})
	m.RecordPageHeight(1, 500)
	m.RecordPageHeight(3, 700)
	m.RecordPageHeight(10, 1200)

	if pos := m.PagePosition(1); pos != 0 {
		t.Fatalf("PagePosition(1) = %v, want 0", pos)
	}

	// pagePosition(k+1) == pagePosition(k) + height(k) + margin, for all k.
	for k := 1; k < 20; k++ {
		want := m.PagePosition(k) + m.PageHeight(k) + 10
		if got := m.PagePosition(k + 1); !almostEqual(got, want) {
			t.Errorf("PagePosition(%d) = %v, want %v", k+1, got, want)
		}
	}
}

func TestVisiblePageRangeBounds(t *testing.T) {
	m := NewManager(500, Config{})

	tests := []struct {
		name           string
		scrollOffset   float64
		viewportHeight float64
		navigating     bool
	}{
		{"top of document", 0, 800, false},
		{"negative offset clamps", -100, 800, false},
		{"mid document", 150_000, 800, false},
		{"past the end", 10_000_000, 800, false},
		{"navigating mid document", 150_000, 800, true},
		{"zero viewport", 5000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := m.VisiblePageRange(tt.scrollOffset, tt.viewportHeight, tt.navigating)
			if start < 1 || end > 500 || start > end {
				t.Errorf("range [%d, %d] violates 1 <= start <= end <= 500", start, end)
			}
		})
	}
}

func TestVisiblePageRangeInitialWindow(t *testing.T) {
	m := NewManager(500, Config{})

	start, end := m.VisiblePageRange(0, 800, false)
	if start != 1 {
		t.Errorf("start = %d, want 1", start)
	}
	// 1 page + viewport span + small buffer; must stay a tight window.
	if end > 15 {
		t.Errorf("end = %d, want <= 15 for the initial window", end)
	}
}

func TestVisiblePageRangeFollowsScroll(t *testing.T) {
	m := NewManager(500, Config{})

	// All defaults: avg 600 + margin 16. Scroll to roughly page 250.
	offset := 249.5 * (DefaultEstimatedHeight + DefaultPageMargin)
	start, end := m.VisiblePageRange(offset, 800, false)
	if start < 240 || start > 250 || end < 250 || end > 260 {
		t.Errorf("range [%d, %d] not centered near page 250", start, end)
	}
}

func TestVisiblePageRangeNavigatingWidens(t *testing.T) {
	m := NewManager(500, Config{})

	offset := 249.5 * (DefaultEstimatedHeight + DefaultPageMargin)
	ns, ne := m.VisiblePageRange(offset, 800, false)
	ws, we := m.VisiblePageRange(offset, 800, true)
	if (we - ws) <= (ne - ns) {
		t.Errorf("navigating range [%d, %d] not wider than normal [%d, %d]", ws, we, ns, ne)
	}
}

func TestPredictiveRange(t *testing.T) {
	m := NewManager(500, Config{})

	tests := []struct {
		target             int
		wantStart, wantEnd int
	}{
		{250, 240, 260},
		{1, 1, 11},
		{3, 1, 13},
		{500, 490, 500},
		{495, 485, 500},
	}

	for _, tt := range tests {
		start, end := m.PredictiveRange(tt.target)
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("PredictiveRange(%d) = [%d, %d], want [%d, %d]",
				tt.target, start, end, tt.wantStart, tt.wantEnd)
		}
		if tt.target < start || tt.target > end {
			t.Errorf("PredictiveRange(%d) = [%d, %d] does not contain target", tt.target, start, end)
		}
	}
}

func TestClampRangeNeverNegative(t *testing.T) {
	m := NewManager(10, Config{})

	tests := []struct {
		start, end         int
		wantStart, wantEnd int
	}{
		{-5, 3, 1, 3},
		{5, 100, 5, 10},
		{-10, -2, 1, 1},
		{50, 60, 10, 10},
		{8, 2, 8, 8},
	}

	for _, tt := range tests {
		gs, ge := m.ClampRange(tt.start, tt.end)
		if gs != tt.wantStart || ge != tt.wantEnd {
			t.Errorf("ClampRange(%d, %d) = [%d, %d], want [%d, %d]",
				tt.start, tt.end, gs, ge, tt.wantStart, tt.wantEnd)
		}
		if gs > ge {
			t.Errorf("ClampRange(%d, %d) produced negative-length range", tt.start, tt.end)
		}
	}
}

func TestEstimatedScrollHeight(t *testing.T) {
	m := NewManager(100, Config{PageMargin: 20, EstimatedHeight: 500})

	want := 100.0 * (500 + 20)
	if got := m.EstimatedScrollHeight(); !almostEqual(got, want) {
		t.Errorf("EstimatedScrollHeight = %v, want %v", got, want)
	}

	// Measuring pages shifts the average and therefore the total.
	m.RecordPageHeight(1, 1000)
	want = 100.0 * (1000 + 20)
	if got := m.EstimatedScrollHeight(); !almostEqual(got, want) {
		t.Errorf("EstimatedScrollHeight after measure = %v, want %v", got, want)
	}
}

func TestProgressClamped(t *testing.T) {
	m := NewManager(100, Config{})

	tests := []struct {
		name           string
		offset         float64
		viewportHeight float64
	}{
		{"start", 0, 800},
		{"middle", 30_000, 800},
		{"past end", 10_000_000, 800},
		{"negative", -50, 800},
		{"viewport taller than doc", 0, 10_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.Progress(tt.offset, tt.viewportHeight)
			if p < 0 || p > 100 {
				t.Errorf("Progress = %v, want within [0, 100]", p)
			}
		})
	}

	if p := m.Progress(0, 800); p != 0 {
		t.Errorf("Progress at top = %v, want 0", p)
	}
}

func TestPageForOffset(t *testing.T) {
	m := NewManager(100, Config{})

	if got := m.PageForOffset(0); got != 1 {
		t.Errorf("PageForOffset(0) = %d, want 1", got)
	}
	if got := m.PageForOffset(-10); got != 1 {
		t.Errorf("PageForOffset(-10) = %d, want 1", got)
	}
	if got := m.PageForOffset(1e12); got != 100 {
		t.Errorf("PageForOffset(huge) = %d, want 100", got)
	}

	avg := DefaultEstimatedHeight + DefaultPageMargin
	if got := m.PageForOffset(avg*2 + 1); got != 3 {
		t.Errorf("PageForOffset two pages down = %d, want 3", got)
	}
}

func TestNewManagerMinimumOnePage(t *testing.T) {
	m := NewManager(0, Config{})
	if m.TotalPages() != 1 {
		t.Errorf("TotalPages = %d, want 1", m.TotalPages())
	}
}
