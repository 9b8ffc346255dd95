package reader

// PageSlot describes how one page of the document should be rendered:
// real content for pages inside the visible range, a placeholder of the
// page's estimated height everywhere else. Placeholders keep the total
// scrollable height stable even though most pages are unmounted.
type PageSlot struct {
	Page    int     `json:"page"`
	Mounted bool    `json:"mounted"`
	Height  float64 `json:"height"`
	Top     float64 `json:"top"`
}

// RenderWindow returns a slot for every page in [1, TotalPages].
// The visible range is re-clamped defensively before slots are built so a
// degenerate range can never produce a negative-length window.
func (r *Reader) RenderWindow() []PageSlot {
	r.mu.Lock()
	start, end := r.geo.ClampRange(r.visible.Start, r.visible.End)
	r.mu.Unlock()

	total := r.geo.TotalPages()
	margin := r.geo.Margin()

	slots := make([]PageSlot, total)
	top := 0.0
	for p := 1; p <= total; p++ {
		h := r.geo.PageHeight(p)
		slots[p-1] = PageSlot{
			Page:    p,
			Mounted: p >= start && p <= end,
			Height:  h,
			Top:     top,
		}
		top += h + margin
	}
	return slots
}
