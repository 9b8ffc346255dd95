package reader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/gesture"
)

// fakeDoc is a fixed-page-count document handle.
type fakeDoc struct {
	pages  int
	closed bool
}

func (d *fakeDoc) Format() document.Format { return document.FormatPDF }
func (d *fakeDoc) PageCount() int          { return d.pages }
func (d *fakeDoc) Close() error            { d.closed = true; return nil }

// measurableDoc additionally reports page sizes, like the PDF handle.
type measurableDoc struct {
	fakeDoc
	measured int
}

func (d *measurableDoc) PageSize(ctx context.Context, page int) (float64, float64, error) {
	d.measured++
	return 612, 792, nil
}

// updateLog captures emitted state updates.
type updateLog struct {
	updates []Update
}

func (l *updateLog) record(u Update) {
	l.updates = append(l.updates, u)
}

func (l *updateLog) pageEmissions() []int {
	var pages []int
	for _, u := range l.updates {
		if u.CurrentPage != nil {
			pages = append(pages, *u.CurrentPage)
		}
	}
	return pages
}

func newTestReader(t *testing.T, pages int, log *updateLog) *Reader {
	t.Helper()
	cfg := Config{SettleDelay: 20 * time.Millisecond}
	if log != nil {
		cfg.OnState = log.record
	}
	r, err := New(&fakeDoc{pages: pages}, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewEmitsReadyState(t *testing.T) {
	log := &updateLog{}
	r := newTestReader(t, 500, log)

	if len(log.updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(log.updates))
	}
	u := log.updates[0]
	if u.TotalPages == nil || *u.TotalPages != 500 {
		t.Errorf("TotalPages = %v, want 500", u.TotalPages)
	}
	if u.CurrentPage == nil || *u.CurrentPage != 1 {
		t.Errorf("CurrentPage = %v, want 1", u.CurrentPage)
	}
	if u.IsLoading == nil || *u.IsLoading {
		t.Errorf("IsLoading = %v, want false", u.IsLoading)
	}
	if u.Error == nil || *u.Error != "" {
		t.Errorf("Error = %v, want cleared", u.Error)
	}

	vr := r.VisibleRange()
	if vr.Start != 1 || vr.End > 15 {
		t.Errorf("initial visible range = %+v, want within [1, 15]", vr)
	}
}

func TestOpenLoadFailure(t *testing.T) {
	log := &updateLog{}
	_, err := Open([]byte("%PDF-garbage"), document.FormatPDF, document.Options{},
		Config{OnState: log.record})
	if !errors.Is(err, document.ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}

	var sawError bool
	for _, u := range log.updates {
		if u.Error != nil && *u.Error == "Failed to load PDF document" {
			if u.IsLoading == nil || *u.IsLoading {
				t.Errorf("error update has IsLoading = %v, want false", u.IsLoading)
			}
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("no load-error update emitted; updates: %+v", log.updates)
	}
}

func TestHandleScrollTracksPage(t *testing.T) {
	log := &updateLog{}
	r := newTestReader(t, 500, log)

	avg := r.Geometry().AveragePageHeight() + r.Geometry().Margin()
	r.HandleScroll(Viewport{ScrollTop: 249.5 * avg, ClientHeight: 800, ScrollHeight: 500 * avg})

	vr := r.VisibleRange()
	if !vr.Contains(250) {
		t.Errorf("visible range %+v does not contain page 250", vr)
	}
	if vr.Start < 240 || vr.End > 262 {
		t.Errorf("visible range %+v wider than the small buffer allows", vr)
	}

	st := r.State()
	if st.CurrentPage != 250 {
		t.Errorf("CurrentPage = %d, want 250", st.CurrentPage)
	}
}

func TestHandleScrollDeduplicatesEmissions(t *testing.T) {
	log := &updateLog{}
	r := newTestReader(t, 100, log)

	vp := Viewport{ScrollTop: 5 * 616, ClientHeight: 800, ScrollHeight: 100 * 616}
	for i := 0; i < 5; i++ {
		r.HandleScroll(vp)
	}

	pages := log.pageEmissions()
	// One emission from New, one for the page change; identical ticks add none.
	if len(pages) != 2 {
		t.Fatalf("page emissions = %v, want exactly 2", pages)
	}
	if pages[1] == pages[0] {
		t.Errorf("consecutive identical page emissions: %v", pages)
	}
}

func TestHandleScrollProgressClamped(t *testing.T) {
	log := &updateLog{}
	r := newTestReader(t, 50, log)

	r.HandleScroll(Viewport{ScrollTop: 1e9, ClientHeight: 800, ScrollHeight: 50 * 616})

	for _, u := range log.updates {
		if u.Progress != nil && (*u.Progress < 0 || *u.Progress > 100) {
			t.Errorf("emitted progress %v outside [0, 100]", *u.Progress)
		}
	}
	if st := r.State(); st.CurrentPage != 50 {
		t.Errorf("CurrentPage = %d, want clamped to 50", st.CurrentPage)
	}
}

func TestRecordPageHeightRefinesGeometry(t *testing.T) {
	r := newTestReader(t, 100, nil)

	r.RecordPageHeight(1, 900)
	if h := r.Geometry().PageHeight(1); h != 900 {
		t.Errorf("PageHeight(1) = %v, want 900", h)
	}

	r.PageRenderFailed(2)
	if h := r.Geometry().PageHeight(2); h != r.Geometry().EstimatedHeight() {
		t.Errorf("failed page height = %v, want fallback", h)
	}
}

func TestPreloadMeasurableDocument(t *testing.T) {
	doc := &measurableDoc{fakeDoc: fakeDoc{pages: 80}}
	r, err := New(doc, Config{PreloadThreshold: 50})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if err := r.Preload(context.Background(), nil); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if doc.measured != 80 {
		t.Errorf("measured %d pages, want 80", doc.measured)
	}
	if got := r.Geometry().MeasuredPages(); got != 80 {
		t.Errorf("MeasuredPages = %d, want 80", got)
	}
}

func TestPreloadSkipsSmallDocuments(t *testing.T) {
	doc := &measurableDoc{fakeDoc: fakeDoc{pages: 10}}
	r, err := New(doc, Config{PreloadThreshold: 50})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if err := r.Preload(context.Background(), nil); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if doc.measured != 0 {
		t.Errorf("measured %d pages on a small document, want 0", doc.measured)
	}
}

// blockingDoc stalls every measurement until released, or until the
// measuring context is cancelled.
type blockingDoc struct {
	fakeDoc
	started chan struct{}
	release chan struct{}
}

func (d *blockingDoc) PageSize(ctx context.Context, page int) (float64, float64, error) {
	select {
	case d.started <- struct{}{}:
	default:
	}
	select {
	case <-d.release:
		return 612, 792, nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

func TestPreloadSingleFlight(t *testing.T) {
	doc := &blockingDoc{
		fakeDoc: fakeDoc{pages: 80},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	r, err := New(doc, Config{PreloadThreshold: 50})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	errc := make(chan error, 1)
	go func() { errc <- r.Preload(context.Background(), nil) }()

	select {
	case <-doc.started:
	case <-time.After(time.Second):
		t.Fatal("first preload never started measuring")
	}

	if err := r.Preload(context.Background(), nil); !errors.Is(err, ErrPreloadActive) {
		t.Errorf("concurrent Preload err = %v, want ErrPreloadActive", err)
	}

	// Close cancels the stalled pass.
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("in-flight Preload err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("in-flight preload did not unblock on Close")
	}
}

func TestPreloadGuardClearsAfterCompletion(t *testing.T) {
	doc := &measurableDoc{fakeDoc: fakeDoc{pages: 80}}
	r, err := New(doc, Config{PreloadThreshold: 50})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if err := r.Preload(context.Background(), nil); err != nil {
		t.Fatalf("first Preload: %v", err)
	}
	if err := r.Preload(context.Background(), nil); err != nil {
		t.Fatalf("Preload after completion: %v, want nil", err)
	}
}

func TestKeyAndSwipeCommands(t *testing.T) {
	r := newTestReader(t, 20, nil)
	r.HandleScroll(Viewport{ScrollTop: 0, ClientHeight: 1000, ScrollHeight: 20 * 616})

	if cmd := r.KeyCommand(gesture.KeyPageDown); cmd.Kind != gesture.ScrollBy || cmd.Delta != 850 {
		t.Errorf("PageDown = %+v, want ScrollBy 850", cmd)
	}
	if cmd := r.KeyCommand(gesture.KeyHome); cmd.Kind != gesture.ScrollToStart {
		t.Errorf("Home = %+v, want ScrollToStart", cmd)
	}
	if cmd := r.SwipeCommand(gesture.DirectionUp); cmd.Kind != gesture.ScrollBy || cmd.Delta <= 0 {
		t.Errorf("swipe up = %+v, want positive ScrollBy", cmd)
	}
	if cmd := r.SwipeCommand(gesture.DirectionDown); cmd.Kind != gesture.ScrollBy || cmd.Delta >= 0 {
		t.Errorf("swipe down = %+v, want negative ScrollBy", cmd)
	}
}

func TestCloseIdempotentAndReleasesDocument(t *testing.T) {
	doc := &fakeDoc{pages: 10}
	log := &updateLog{}
	r, err := New(doc, Config{OnState: log.record})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !doc.closed {
		t.Errorf("document handle not released on Close")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	before := len(log.updates)
	r.HandleScroll(Viewport{ScrollTop: 5000, ClientHeight: 800})
	if len(log.updates) != before {
		t.Errorf("state emitted after Close")
	}
}
