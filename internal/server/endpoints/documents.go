package endpoints

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/byte-squad-abac/bookreader/internal/api"
	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/library"
	"github.com/byte-squad-abac/bookreader/internal/svcctx"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 200 << 20 // 200MB

// UploadDocumentEndpoint handles POST /api/documents with a multipart upload.
type UploadDocumentEndpoint struct{}

var _ api.Endpoint = (*UploadDocumentEndpoint)(nil)

func (e *UploadDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Upload a document and open a reader over it
//	@Description	Accepts PDF, EPUB, DOCX, or plain text; the format is sniffed from the payload
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"Document payload"
//	@Param			name	formData	string	false	"Display name (defaults to the uploaded filename)"
//	@Param			user_id	formData	string	false	"Reader identity for session tracking"
//	@Success		201	{object}	library.Info
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/documents [post]
func (e *UploadDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err))
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusBadRequest, "upload exceeds size limit")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty upload")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	lib := svcctx.LibraryFrom(r.Context())
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not initialized")
		return
	}

	h, err := lib.Open(r.Context(), name, r.FormValue("user_id"), data)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, document.ErrInvalidDocument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, h.Snapshot())
}

func (e *UploadDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var name, userID string
	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Upload a document and open a reader over it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, err := mw.CreateFormFile("file", name)
			if err != nil {
				return err
			}
			if _, err := fw.Write(data); err != nil {
				return err
			}
			if err := mw.WriteField("name", name); err != nil {
				return err
			}
			if userID != "" {
				if err := mw.WriteField("user_id", userID); err != nil {
					return err
				}
			}
			if err := mw.Close(); err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp library.Info
			if err := client.PostRaw(cmd.Context(), "/api/documents", mw.FormDataContentType(), &buf, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the file name)")
	cmd.Flags().StringVar(&userID, "user", "", "Reader identity for session tracking")
	return cmd
}

// ListDocumentsEndpoint handles GET /api/documents.
type ListDocumentsEndpoint struct{}

var _ api.Endpoint = (*ListDocumentsEndpoint)(nil)

func (e *ListDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

func (e *ListDocumentsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List open documents
//	@Tags		documents
//	@Produce	json
//	@Success	200	{array}		library.Info
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/documents [get]
func (e *ListDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	lib := svcctx.LibraryFrom(r.Context())
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not initialized")
		return
	}
	writeJSON(w, http.StatusOK, lib.List())
}

func (e *ListDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List open documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []library.Info
			if err := client.Get(cmd.Context(), "/api/documents", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetDocumentEndpoint handles GET /api/documents/{id}.
type GetDocumentEndpoint struct{}

var _ api.Endpoint = (*GetDocumentEndpoint)(nil)

func (e *GetDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}", e.handler
}

func (e *GetDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get one open document
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	library.Info
//	@Failure	404	{object}	ErrorResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/documents/{id} [get]
func (e *GetDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	h, ok := handleFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Snapshot())
}

func (e *GetDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "document <id>",
		Short: "Get one open document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp library.Info
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteDocumentEndpoint handles DELETE /api/documents/{id}.
type DeleteDocumentEndpoint struct{}

var _ api.Endpoint = (*DeleteDocumentEndpoint)(nil)

func (e *DeleteDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/documents/{id}", e.handler
}

func (e *DeleteDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Close a document
//	@Description	Ends the reading session, releases the reader, and removes the stored payload
//	@Tags			documents
//	@Produce		json
//	@Param			id	path	string	true	"Document ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/documents/{id} [delete]
func (e *DeleteDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	lib := svcctx.LibraryFrom(r.Context())
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not initialized")
		return
	}

	if err := lib.Close(r.PathValue("id")); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Close an open document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/documents/"+args[0]); err != nil {
				return err
			}
			cmd.Println("closed", args[0])
			return nil
		},
	}
}

// handleFromRequest resolves the {id} path value to an open handle, writing
// the error response itself when the lookup fails.
func handleFromRequest(w http.ResponseWriter, r *http.Request) (*library.Handle, bool) {
	lib := svcctx.LibraryFrom(r.Context())
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not initialized")
		return nil, false
	}

	h, err := lib.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return h, true
}
