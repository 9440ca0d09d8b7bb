package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/httputil"
)

// multipartOverhead is allowed on top of the file size for boundaries and form fields
const multipartOverhead = 1 << 20

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService     docsysSvc.DocumentService
	moveService    docsysSvc.MoveService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsysSvc.DocumentService, moveService docsysSvc.MoveService, maxUploadBytes int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		moveService:    moveService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListDocuments returns all document metadata
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListDocuments(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// UploadDocument stores an uploaded file.
// Form fields: file (required), title, folder_id.
// POST /api/documents
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, h.logger, err)
			return
		}
		badRequest(w, h.logger, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.logger, domain.NewValidation("file is required"))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes))
		return
	}

	req := &docsysSvc.UploadDocumentRequest{
		Title:    r.FormValue("title"),
		Filename: header.Filename,
	}
	if folderID := r.FormValue("folder_id"); folderID != "" {
		req.FolderID = &folderID
	}

	doc, err := h.docService.UploadDocument(r.Context(), req, file)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves document metadata
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DownloadContent streams the stored bytes
// GET /api/documents/{id}/content
func (h *DocumentHandler) DownloadContent(w http.ResponseWriter, r *http.Request) {
	doc, content, err := h.docService.OpenContent(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeContent(w, h.logger, doc, content)
}

// writeContent sends stored bytes as an attachment and closes content
func writeContent(w http.ResponseWriter, logger *slog.Logger, doc *models.Document, content io.ReadCloser) {
	defer content.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": doc.OriginalName,
	}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		// headers are gone; the client sees a truncated body
		logger.Warn("content stream interrupted", "document_id", doc.ID, "error", err)
	}
}

// updateDocumentRequest is a PATCH body; absent fields are left unchanged
type updateDocumentRequest struct {
	Title    httputil.OptionalString `json:"title"`
	FolderID httputil.OptionalString `json:"folder_id"` // null unfiles the document
}

// UpdateDocument renames and/or moves a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, err)
		return
	}
	if !req.Title.Present && !req.FolderID.Present {
		handleError(w, h.logger, domain.NewValidation("nothing to update: set title or folder_id"))
		return
	}
	if req.Title.Present && req.Title.Value == nil {
		handleError(w, h.logger, domain.NewValidation("title cannot be null"))
		return
	}

	var (
		doc *models.Document
		err error
	)
	if req.Title.Present {
		if doc, err = h.docService.RenameDocument(r.Context(), id, *req.Title.Value); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	if req.FolderID.Present {
		if doc, err = h.moveService.MoveDocument(r.Context(), id, req.FolderID.Value); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document, its shares and its content
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docService.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}

// MoveTargets lists destinations for the move dialog
// GET /api/documents/{id}/move-targets
func (h *DocumentHandler) MoveTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.moveService.DocumentMoveTargets(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, targets)
}
