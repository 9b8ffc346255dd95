package reader

import "time"

// Controller exposes discrete navigation over a reader. It is a plain value
// handed to whatever UI drives paging - an explicit interface rather than a
// bag of functions patched onto a shared object.
type Controller struct {
	r *Reader
}

// Controller returns the navigation controller for this reader.
func (r *Reader) Controller() Controller {
	return Controller{r: r}
}

// GoToPage jumps to page n. Returns the scroll target the host should
// animate to, and false if the request was out of range (a silent no-op:
// stale page inputs from a briefly out-of-sync UI are not errors).
func (c Controller) GoToPage(n int) (ScrollTarget, bool) {
	return c.r.navigateTo(n)
}

// First jumps to page 1.
func (c Controller) First() (ScrollTarget, bool) {
	return c.r.navigateTo(1)
}

// Last jumps to the final page.
func (c Controller) Last() (ScrollTarget, bool) {
	return c.r.navigateTo(c.r.geo.TotalPages())
}

// Next advances one page.
func (c Controller) Next() (ScrollTarget, bool) {
	c.r.mu.Lock()
	n := c.r.currentPage + 1
	c.r.mu.Unlock()
	return c.r.navigateTo(n)
}

// Previous goes back one page.
func (c Controller) Previous() (ScrollTarget, bool) {
	c.r.mu.Lock()
	n := c.r.currentPage - 1
	c.r.mu.Unlock()
	return c.r.navigateTo(n)
}

// navigateTo implements the two-phase jump: pre-widen the virtualization
// window around the target, report the destination page immediately, and
// only settle back to the narrow window after the smooth scroll has had
// time to finish.
func (r *Reader) navigateTo(n int) (ScrollTarget, bool) {
	r.mu.Lock()
	total := r.geo.TotalPages()
	if r.closed || n < 1 || n > total {
		r.mu.Unlock()
		return ScrollTarget{}, false
	}

	r.navigating = true
	start, end := r.geo.PredictiveRange(n)
	r.visible = Range{Start: start, End: end}

	var target ScrollTarget
	if n == total {
		// The height-average position estimate drifts over a long
		// document; the true end is the container's own bottom.
		off := r.viewport.ScrollHeight - r.viewport.ClientHeight
		if off < 0 {
			off = 0
		}
		target = ScrollTarget{Offset: off, ToEnd: true}
	} else {
		target = ScrollTarget{Offset: r.geo.PagePosition(n)}
	}

	// Optimistic: report the destination now, not when the scroll lands.
	r.currentPage = n
	r.lastEmitted = n
	progress := r.geo.Progress(target.Offset, r.viewport.ClientHeight)

	if r.navTimer != nil {
		r.navTimer.Stop()
	}
	r.navTimer = time.AfterFunc(r.cfg.SettleDelay, r.settle)

	cb := r.cfg.OnState
	r.mu.Unlock()

	emit(cb, Update{CurrentPage: iptr(n), Progress: fptr(progress)})
	return target, true
}

// settle clears the navigating flag once the scroll animation is assumed
// done and shrinks the window back to the ordinary scroll buffer.
func (r *Reader) settle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.navigating = false
	start, end := r.geo.VisiblePageRange(r.viewport.ScrollTop, r.viewport.ClientHeight, false)
	r.visible = Range{Start: start, End: end}
}
