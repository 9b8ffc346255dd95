package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/byte-squad-abac/bookreader/internal/api"
	"github.com/byte-squad-abac/bookreader/internal/gesture"
	"github.com/byte-squad-abac/bookreader/internal/library"
	"github.com/byte-squad-abac/bookreader/internal/reader"
)

// ReaderStateEndpoint handles GET /api/documents/{id}/state.
type ReaderStateEndpoint struct{}

var _ api.Endpoint = (*ReaderStateEndpoint)(nil)

func (e *ReaderStateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/state", e.handler
}

func (e *ReaderStateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get the current reader state
//	@Tags		reader
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	reader.State
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/state [get]
func (e *ReaderStateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Reader.State())
}

func (e *ReaderStateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "state <id>",
		Short: "Get the current reader state for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp reader.State
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/state", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ScrollEndpoint handles POST /api/documents/{id}/scroll.
type ScrollEndpoint struct{}

var _ api.Endpoint = (*ScrollEndpoint)(nil)

func (e *ScrollEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/scroll", e.handler
}

func (e *ScrollEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Report viewport metrics after a scroll
//	@Description	Recomputes the visible page window and current page from the host's scroll position
//	@Tags			reader
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			viewport	body	reader.Viewport	true	"Scroll container metrics"
//	@Success		200	{object}	reader.State
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/documents/{id}/scroll [post]
func (e *ScrollEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}

	var vp reader.Viewport
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid viewport: %v", err))
		return
	}

	h.Reader.HandleScroll(vp)
	state := h.Reader.State()
	recordSessionProgress(h, state)
	writeJSON(w, http.StatusOK, state)
}

func (e *ScrollEndpoint) Command(_ func() string) *cobra.Command {
	// Scroll reporting is a host-integration call, not a CLI action.
	return nil
}

// NavigateRequest selects a navigation action.
type NavigateRequest struct {
	// Action is one of: first, last, next, prev, page.
	Action string `json:"action"`
	// Page is the target for the "page" action (1-based).
	Page int `json:"page,omitempty"`
}

// NavigateResponse carries the computed scroll target and resulting state.
type NavigateResponse struct {
	Target reader.ScrollTarget `json:"target"`
	State  reader.State        `json:"state"`
}

// NavigateEndpoint handles POST /api/documents/{id}/navigate.
type NavigateEndpoint struct{}

var _ api.Endpoint = (*NavigateEndpoint)(nil)

func (e *NavigateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/navigate", e.handler
}

func (e *NavigateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Jump to a page
//	@Description	Computes the scroll target for a discrete jump and pre-widens the render window around it
//	@Tags			reader
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			request	body		NavigateRequest	true	"Navigation action"
//	@Success		200	{object}	NavigateResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Router			/api/documents/{id}/navigate [post]
func (e *NavigateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	ctrl := h.Reader.Controller()
	var (
		target   reader.ScrollTarget
		accepted bool
	)
	switch req.Action {
	case "first":
		target, accepted = ctrl.First()
	case "last":
		target, accepted = ctrl.Last()
	case "next":
		target, accepted = ctrl.Next()
	case "prev":
		target, accepted = ctrl.Previous()
	case "page":
		target, accepted = ctrl.GoToPage(req.Page)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	if !accepted {
		writeError(w, http.StatusUnprocessableEntity, "navigation target out of range")
		return
	}

	state := h.Reader.State()
	recordSessionProgress(h, state)
	writeJSON(w, http.StatusOK, NavigateResponse{Target: target, State: state})
}

func (e *NavigateEndpoint) Command(getServerURL func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goto <id> <first|last|next|prev|page-number>",
		Short: "Navigate a document to a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := NavigateRequest{Action: args[1]}
			if n, err := strconv.Atoi(args[1]); err == nil {
				req.Action = "page"
				req.Page = n
			}

			client := api.NewClient(getServerURL())
			var resp NavigateResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/navigate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	return cmd
}

// WindowResponse is the render window plus the range that produced it.
type WindowResponse struct {
	VisibleRange reader.Range      `json:"visible_range"`
	Slots        []reader.PageSlot `json:"slots"`
}

// WindowEndpoint handles GET /api/documents/{id}/window.
type WindowEndpoint struct{}

var _ api.Endpoint = (*WindowEndpoint)(nil)

func (e *WindowEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/window", e.handler
}

func (e *WindowEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get the render window
//	@Description	One slot per page: mounted content inside the visible range, placeholders elsewhere
//	@Tags			reader
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	WindowResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/documents/{id}/window [get]
func (e *WindowEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, WindowResponse{
		VisibleRange: h.Reader.VisibleRange(),
		Slots:        h.Reader.RenderWindow(),
	})
}

func (e *WindowEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:    "window <id>",
		Hidden: true,
		Short:  "Dump the render window for a document",
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp WindowResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/window", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// PreloadResponse reports the outcome of a dimension preload pass.
type PreloadResponse struct {
	TotalPages    int `json:"total_pages"`
	MeasuredPages int `json:"measured_pages"`
}

// PreloadEndpoint handles POST /api/documents/{id}/preload.
type PreloadEndpoint struct{}

var _ api.Endpoint = (*PreloadEndpoint)(nil)

func (e *PreloadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/preload", e.handler
}

func (e *PreloadEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Preload true page dimensions
//	@Description	Measures every page of a large document so scroll positions stop drifting; no-op for small or unmeasurable documents
//	@Tags			reader
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	PreloadResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/documents/{id}/preload [post]
func (e *PreloadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.Reader.Preload(r.Context(), nil); err != nil {
		if errors.Is(err, reader.ErrPreloadActive) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	geo := h.Reader.Geometry()
	writeJSON(w, http.StatusOK, PreloadResponse{
		TotalPages:    geo.TotalPages(),
		MeasuredPages: geo.MeasuredPages(),
	})
}

func (e *PreloadEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "preload <id>",
		Short: "Preload page dimensions for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PreloadResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/preload", nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Measured %d of %d pages\n", resp.MeasuredPages, resp.TotalPages)
			return nil
		},
	}
}

// ZoomRequest selects a zoom action.
type ZoomRequest struct {
	// Action is one of: set, pinch, double-tap.
	Action string `json:"action"`
	// Zoom is the target percentage for the "set" action.
	Zoom float64 `json:"zoom,omitempty"`
	// Scale is the final pinch scale for the "pinch" action.
	Scale float64 `json:"scale,omitempty"`
}

// ZoomResponse reports the zoom level after an action.
type ZoomResponse struct {
	Zoom    float64 `json:"zoom"`
	Changed bool    `json:"changed"`
}

// ZoomEndpoint handles POST /api/documents/{id}/zoom.
type ZoomEndpoint struct{}

var _ api.Endpoint = (*ZoomEndpoint)(nil)

func (e *ZoomEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/zoom", e.handler
}

func (e *ZoomEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Change the zoom level
//	@Description	Sets the zoom directly, or applies a completed pinch or double-tap gesture; pinch scales inside the dead zone leave the level unchanged
//	@Tags			reader
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Document ID"
//	@Param			request	body		ZoomRequest	true	"Zoom action"
//	@Success		200	{object}	ZoomResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/documents/{id}/zoom [post]
func (e *ZoomEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}

	var req ZoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	var resp ZoomResponse
	switch req.Action {
	case "set":
		before := h.Reader.Zoom()
		resp.Zoom = h.Reader.SetZoom(req.Zoom)
		resp.Changed = resp.Zoom != before
	case "pinch":
		resp.Zoom, resp.Changed = h.Reader.ZoomGesture(gesture.Event{
			Kind:  gesture.KindPinchEnd,
			Scale: req.Scale,
		})
	case "double-tap":
		resp.Zoom, resp.Changed = h.Reader.ZoomGesture(gesture.Event{
			Kind: gesture.KindDoubleTap,
		})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ZoomEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "zoom <id> <percent|toggle>",
		Short: "Change the zoom level for a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ZoomRequest{Action: "double-tap"}
			if args[1] != "toggle" {
				pct, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("zoom level %q is not a number", args[1])
				}
				req = ZoomRequest{Action: "set", Zoom: pct}
			}

			client := api.NewClient(getServerURL())
			var resp ZoomResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/zoom", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ProgressResponse reports reading progress for an open document.
type ProgressResponse struct {
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	Progress    float64 `json:"progress"`
	SessionID   string  `json:"session_id,omitempty"`
	ReadSeconds int     `json:"read_seconds,omitempty"`
}

// ProgressEndpoint handles GET /api/documents/{id}/progress.
type ProgressEndpoint struct{}

var _ api.Endpoint = (*ProgressEndpoint)(nil)

func (e *ProgressEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/progress", e.handler
}

func (e *ProgressEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get reading progress
//	@Tags		reader
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ProgressResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/progress [get]
func (e *ProgressEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}

	state := h.Reader.State()
	resp := ProgressResponse{
		CurrentPage: state.CurrentPage,
		TotalPages:  state.TotalPages,
		Progress:    state.Progress,
	}
	if h.Session != nil {
		rec := h.Session.Record()
		resp.SessionID = rec.ID
		resp.ReadSeconds = rec.ReadSeconds
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ProgressEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id>",
		Short: "Get reading progress for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ProgressResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/progress", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// recordSessionProgress mirrors the reader position into the document's
// session so the next tick persists it.
func recordSessionProgress(h *library.Handle, state reader.State) {
	if h.Session != nil {
		h.Session.UpdateProgress(state.CurrentPage, state.Progress)
	}
}
