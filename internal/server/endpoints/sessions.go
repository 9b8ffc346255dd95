package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/byte-squad-abac/bookreader/internal/api"
	"github.com/byte-squad-abac/bookreader/internal/session"
	"github.com/byte-squad-abac/bookreader/internal/svcctx"
)

// The /api/sessions surface is the collector side of session.HTTPRecorder:
// remote readers push their session lifecycle here while local documents
// write straight to the store.

// StartSessionEndpoint handles POST /api/sessions.
type StartSessionEndpoint struct{}

var _ api.Endpoint = (*StartSessionEndpoint)(nil)

func (e *StartSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions", e.handler
}

func (e *StartSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Start a reading session
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		session.StartRequest	true	"User and book identifiers"
//	@Success	201	{object}	session.Record
//	@Failure	400	{object}	ErrorResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/sessions [post]
func (e *StartSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SessionStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	var req session.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.UserID == "" || req.BookID == "" {
		writeError(w, http.StatusBadRequest, "user_id and book_id are required")
		return
	}

	rec, err := store.Start(r.Context(), req.UserID, req.BookID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (e *StartSessionEndpoint) Command(_ func() string) *cobra.Command {
	// Sessions are started by readers, not operators.
	return nil
}

// TickSessionEndpoint handles PATCH /api/sessions/{id}.
type TickSessionEndpoint struct{}

var _ api.Endpoint = (*TickSessionEndpoint)(nil)

func (e *TickSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PATCH", "/api/sessions/{id}", e.handler
}

func (e *TickSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Record reading time against a session
//	@Description	Adds read seconds and updates the reader position; rejected once the session has ended
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			request	body		session.TickRequest	true	"Accumulated time and position"
//	@Success		200	{object}	session.Record
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id} [patch]
func (e *TickSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SessionStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	var req session.TickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	rec, err := store.Tick(r.Context(), r.PathValue("id"), req.Seconds, req.Page, req.Progress)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *TickSessionEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// EndSessionEndpoint handles POST /api/sessions/{id}/end.
type EndSessionEndpoint struct{}

var _ api.Endpoint = (*EndSessionEndpoint)(nil)

func (e *EndSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/end", e.handler
}

func (e *EndSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	End a reading session
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	session.Record
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/sessions/{id}/end [post]
func (e *EndSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SessionStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	rec, err := store.End(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *EndSessionEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// GetSessionEndpoint handles GET /api/sessions/{id}.
type GetSessionEndpoint struct{}

var _ api.Endpoint = (*GetSessionEndpoint)(nil)

func (e *GetSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}", e.handler
}

func (e *GetSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get one reading session
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	session.Record
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/sessions/{id} [get]
func (e *GetSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SessionStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	rec, err := store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *GetSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "session <id>",
		Short: "Get one reading session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.Record
			if err := client.Get(cmd.Context(), "/api/sessions/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListSessionsEndpoint handles GET /api/sessions filtered by user or book.
type ListSessionsEndpoint struct{}

var _ api.Endpoint = (*ListSessionsEndpoint)(nil)

func (e *ListSessionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions", e.handler
}

func (e *ListSessionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List reading sessions for a user or book
//	@Tags		sessions
//	@Produce	json
//	@Param		user_id	query		string	false	"Filter by user"
//	@Param		book_id	query		string	false	"Filter by book"
//	@Success	200	{array}		session.Record
//	@Failure	400	{object}	ErrorResponse
//	@Router		/api/sessions [get]
func (e *ListSessionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SessionStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	userID := r.URL.Query().Get("user_id")
	bookID := r.URL.Query().Get("book_id")

	var (
		recs []session.Record
		err  error
	)
	switch {
	case userID != "":
		recs, err = store.ListByUser(r.Context(), userID)
	case bookID != "":
		recs, err = store.ListByBook(r.Context(), bookID)
	default:
		writeError(w, http.StatusBadRequest, "user_id or book_id query parameter required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []session.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (e *ListSessionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var userID, bookID string
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List reading sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/sessions"
			switch {
			case userID != "":
				path += "?user_id=" + userID
			case bookID != "":
				path += "?book_id=" + bookID
			default:
				return fmt.Errorf("one of --user or --book is required")
			}

			client := api.NewClient(getServerURL())
			var resp []session.Record
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Filter by user id")
	cmd.Flags().StringVar(&bookID, "book", "", "Filter by book id")
	return cmd
}
