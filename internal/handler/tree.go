package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService docsysSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService docsysSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/document tree, filtered by q
// GET /api/tree?q=&folder_id=
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	opts := docsysSvc.TreeOptions{
		Query:           httputil.QueryString(r, "q"),
		CurrentFolderID: httputil.QueryOptional(r, "folder_id"),
	}

	tree, err := h.treeService.GetTree(r.Context(), opts)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree.Nested())
}
