// Package reader is the format-agnostic reading engine: it owns one open
// document, tracks viewport and logical reading position through a geometry
// manager, and reports state upward through a single callback.
package reader

// Range is a closed interval of 1-based page numbers.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether page n lies inside the range.
func (r Range) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// Len returns the number of pages in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// State is the full reader state at a point in time.
type State struct {
	CurrentPage  int     `json:"current_page"`
	TotalPages   int     `json:"total_pages"`
	Progress     float64 `json:"progress"`
	IsLoading    bool    `json:"is_loading"`
	IsNavigating bool    `json:"is_navigating"`
	VisibleRange Range   `json:"visible_range"`
	Error        string  `json:"error,omitempty"`
}

// Update is a partial state change pushed to the host. Nil fields are
// unchanged; the host merges updates into its own display state.
// Values are always clamped before emission: progress to [0, 100],
// current page to [1, total pages].
type Update struct {
	CurrentPage *int     `json:"current_page,omitempty"`
	TotalPages  *int     `json:"total_pages,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
	IsLoading   *bool    `json:"is_loading,omitempty"`
	Error       *string  `json:"error,omitempty"`
}

// StateFunc receives partial state updates. It is the only upward channel
// from a reader to its host.
type StateFunc func(Update)

// Viewport is the scroll container's metrics as reported by the host.
type Viewport struct {
	ScrollTop    float64 `json:"scroll_top"`
	ClientHeight float64 `json:"client_height"`
	ScrollHeight float64 `json:"scroll_height"`
}

// ScrollTarget is where the host should scroll to after a navigation.
// Smooth scrolling is the host's concern; the engine only computes the
// destination.
type ScrollTarget struct {
	Offset float64 `json:"offset"`
	// ToEnd marks the last-page special case: the host should scroll to
	// the true bottom of its container rather than the estimated offset.
	ToEnd bool `json:"to_end"`
}

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }
func sptr(v string) *string   { return &v }
