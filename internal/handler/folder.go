package handler

import (
	"log/slog"
	"net/http"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService docsysSvc.FolderService
	moveService   docsysSvc.MoveService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService docsysSvc.FolderService, moveService docsysSvc.MoveService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		moveService:   moveService,
		logger:        logger,
	}
}

// ListFolders returns every folder (flat)
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListFolders(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// CreateFolder creates a folder at root or under parent_id
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, err)
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folderService.GetFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// updateFolderRequest is a PATCH body; absent fields are left unchanged
type updateFolderRequest struct {
	Name     httputil.OptionalString `json:"name"`
	ParentID httputil.OptionalString `json:"parent_id"` // null moves to root
}

// UpdateFolder renames and/or moves a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, err)
		return
	}
	if !req.Name.Present && !req.ParentID.Present {
		handleError(w, h.logger, domain.NewValidation("nothing to update: set name or parent_id"))
		return
	}
	if req.Name.Present && req.Name.Value == nil {
		handleError(w, h.logger, domain.NewValidation("name cannot be null"))
		return
	}

	var (
		folder *models.Folder
		err    error
	)
	if req.Name.Present {
		if folder, err = h.folderService.RenameFolder(r.Context(), id, *req.Name.Value); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	if req.ParentID.Present {
		if folder, err = h.moveService.MoveFolder(r.Context(), id, req.ParentID.Value); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	result, err := h.folderService.DeleteFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// MoveTargets lists destinations for the move dialog
// GET /api/folders/{id}/move-targets
func (h *FolderHandler) MoveTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.moveService.FolderMoveTargets(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, targets)
}
