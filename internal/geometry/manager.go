// Package geometry tracks per-page heights for a paginated document and
// answers visibility and position queries for a virtualized scroll view.
//
// Heights are learned incrementally: a page's true height is only known once
// it has been rendered (or preloaded), so position math runs on the average
// of the heights observed so far and converges as more pages are measured.
package geometry

import (
	"math"
	"sync"
)

// Defaults used when Config fields are left zero.
const (
	// DefaultEstimatedHeight is the assumed height, in layout units, of a
	// page that has not been measured yet.
	DefaultEstimatedHeight = 600.0

	// DefaultPageMargin is the vertical gap between consecutive pages.
	DefaultPageMargin = 16.0

	// DefaultScrollBuffer pads the visible range during ordinary scrolling.
	DefaultScrollBuffer = 5

	// DefaultNavigationBuffer pads the visible range while a discrete
	// navigation is in flight, so the destination area is pre-mounted.
	DefaultNavigationBuffer = 15

	// DefaultPredictiveRadius is the half-width of the window opened
	// around a navigation target before the scroll completes.
	DefaultPredictiveRadius = 10
)

// Config tunes a Manager. Zero values fall back to the package defaults.
type Config struct {
	EstimatedHeight  float64
	PageMargin       float64
	ScrollBuffer     int
	NavigationBuffer int
	PredictiveRadius int
	PreloadBatchSize int
}

func (c Config) withDefaults() Config {
	if c.EstimatedHeight <= 0 {
		c.EstimatedHeight = DefaultEstimatedHeight
	}
	if c.PageMargin <= 0 {
		c.PageMargin = DefaultPageMargin
	}
	if c.ScrollBuffer <= 0 {
		c.ScrollBuffer = DefaultScrollBuffer
	}
	if c.NavigationBuffer <= 0 {
		c.NavigationBuffer = DefaultNavigationBuffer
	}
	if c.PredictiveRadius <= 0 {
		c.PredictiveRadius = DefaultPredictiveRadius
	}
	if c.PreloadBatchSize <= 0 {
		c.PreloadBatchSize = DefaultPreloadBatchSize
	}
	return c
}

// Manager owns the page-height table for a single document.
// The total page count is fixed for the Manager's lifetime; opening a new
// document requires a new Manager so stale heights never leak across
// documents.
type Manager struct {
	mu         sync.RWMutex
	totalPages int
	heights    map[int]float64
	sum        float64 // running sum of recorded heights
	cfg        Config
}

// NewManager creates a Manager for a document with totalPages pages.
// totalPages values below 1 are treated as 1.
func NewManager(totalPages int, cfg Config) *Manager {
	if totalPages < 1 {
		totalPages = 1
	}
	return &Manager{
		totalPages: totalPages,
		heights:    make(map[int]float64),
		cfg:        cfg.withDefaults(),
	}
}

// TotalPages returns the fixed page count.
func (m *Manager) TotalPages() int {
	return m.totalPages
}

// MeasuredPages returns how many pages have a recorded height.
func (m *Manager) MeasuredPages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.heights)
}

// HasHeight reports whether a real height has been recorded for page n.
func (m *Manager) HasHeight(n int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.heights[n]
	return ok
}

// PageHeight returns the recorded height for page n, or the estimated
// fallback when the page has not been measured.
func (m *Manager) PageHeight(n int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.heights[n]; ok {
		return h
	}
	return m.cfg.EstimatedHeight
}

// RecordPageHeight stores the observed height for page n.
// Out-of-range page numbers and non-positive heights are ignored, so the
// table never holds an entry for page 0 or past the document end.
func (m *Manager) RecordPageHeight(n int, height float64) {
	if n < 1 || n > m.totalPages || height <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.heights[n]; ok {
		m.sum -= prev
	}
	m.heights[n] = height
	m.sum += height
}

// AveragePageHeight returns the mean of all recorded heights, or the
// estimated fallback when nothing has been measured yet.
func (m *Manager) AveragePageHeight() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.averageLocked()
}

func (m *Manager) averageLocked() float64 {
	if len(m.heights) == 0 {
		return m.cfg.EstimatedHeight
	}
	return m.sum / float64(len(m.heights))
}

// VisiblePageRange computes the closed range of pages that should be mounted
// for the given scroll offset. The range is padded by the scroll buffer, or
// by the larger navigation buffer while a discrete jump is settling, and is
// always clamped to [1, totalPages].
func (m *Manager) VisiblePageRange(scrollOffset, viewportHeight float64, navigating bool) (start, end int) {
	m.mu.RLock()
	avg := m.averageLocked() + m.cfg.PageMargin
	buffer := m.cfg.ScrollBuffer
	if navigating {
		buffer = m.cfg.NavigationBuffer
	}
	m.mu.RUnlock()

	if scrollOffset < 0 {
		scrollOffset = 0
	}
	current := int(scrollOffset/avg) + 1
	span := 0
	if viewportHeight > 0 {
		span = int(math.Ceil(viewportHeight / avg))
	}
	return m.ClampRange(current-buffer, current+span+buffer)
}

// PredictiveRange returns a fixed-radius window around a navigation target.
// The window is opened before the scroll animation completes so the
// destination pages are already mounted when the viewport arrives.
func (m *Manager) PredictiveRange(target int) (start, end int) {
	return m.ClampRange(target-m.cfg.PredictiveRadius, target+m.cfg.PredictiveRadius)
}

// ClampRange clamps a candidate range to [1, totalPages], preserving
// start <= end. A fully out-of-bounds range degenerates to a single page at
// the nearer boundary rather than a negative-length interval.
func (m *Manager) ClampRange(start, end int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > m.totalPages {
		end = m.totalPages
	}
	if end < start {
		end = start
	}
	if start > m.totalPages {
		start = m.totalPages
		end = m.totalPages
	}
	return start, end
}

// PagePosition returns the absolute vertical offset of the top of page n:
// the cumulative heights of all preceding pages plus one margin per page.
// PagePosition(1) is always 0. O(n), acceptable because callers only ask for
// pages near the viewport or a navigation target.
func (m *Manager) PagePosition(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n > m.totalPages {
		n = m.totalPages
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos := 0.0
	for k := 1; k < n; k++ {
		h, ok := m.heights[k]
		if !ok {
			h = m.cfg.EstimatedHeight
		}
		pos += h + m.cfg.PageMargin
	}
	return pos
}

// EstimatedScrollHeight returns the assumed total scrollable height of the
// document: page count times the current average page height plus margins.
// Used to size the scroll container and to derive progress percentages.
func (m *Manager) EstimatedScrollHeight() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.totalPages) * (m.averageLocked() + m.cfg.PageMargin)
}

// PageForOffset maps a scroll offset to the 1-based page it falls on,
// clamped to [1, totalPages].
func (m *Manager) PageForOffset(scrollOffset float64) int {
	if scrollOffset <= 0 {
		return 1
	}
	avg := m.AveragePageHeight() + m.cfg.PageMargin
	page := int(math.Ceil(scrollOffset / avg))
	if page < 1 {
		page = 1
	}
	if page > m.totalPages {
		page = m.totalPages
	}
	return page
}

// Progress converts a scroll offset into a 0-100 reading percentage.
func (m *Manager) Progress(scrollOffset, viewportHeight float64) float64 {
	total := m.EstimatedScrollHeight() - viewportHeight
	if total <= 0 {
		return 100
	}
	p := scrollOffset / total * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Margin returns the configured inter-page margin.
func (m *Manager) Margin() float64 {
	return m.cfg.PageMargin
}

// EstimatedHeight returns the configured fallback page height.
func (m *Manager) EstimatedHeight() float64 {
	return m.cfg.EstimatedHeight
}
