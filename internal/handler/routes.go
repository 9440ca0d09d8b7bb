package handler

import (
	"net/http"

	models "portal/internal/domain/models/docsystem"
	"portal/internal/middleware"
)

// Handlers groups everything the router serves
type Handlers struct {
	Health    *HealthHandler
	Folders   *FolderHandler
	Documents *DocumentHandler
	Shares    *ShareHandler
	Tree      *TreeHandler
}

// NewRouter registers all routes (Go 1.22+ patterns).
// Management routes need an admin or group admin; /api/me/shared and its
// downloads are open to every authenticated role.
func NewRouter(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	manage := middleware.RequireRole(models.RoleAdmin, models.RoleGroupAdmin)
	anyRole := middleware.RequireRole(models.RoleAdmin, models.RoleGroupAdmin, models.RoleInvestor)

	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Tree
	mux.HandleFunc("GET /api/tree", manage(h.Tree.GetTree))

	// Folders
	mux.HandleFunc("GET /api/folders", manage(h.Folders.ListFolders))
	mux.HandleFunc("POST /api/folders", manage(h.Folders.CreateFolder))
	mux.HandleFunc("GET /api/folders/{id}", manage(h.Folders.GetFolder))
	mux.HandleFunc("PATCH /api/folders/{id}", manage(h.Folders.UpdateFolder))
	mux.HandleFunc("DELETE /api/folders/{id}", manage(h.Folders.DeleteFolder))
	mux.HandleFunc("GET /api/folders/{id}/move-targets", manage(h.Folders.MoveTargets))

	// Documents
	mux.HandleFunc("GET /api/documents", manage(h.Documents.ListDocuments))
	mux.HandleFunc("POST /api/documents", manage(h.Documents.UploadDocument))
	mux.HandleFunc("GET /api/documents/{id}", manage(h.Documents.GetDocument))
	mux.HandleFunc("PATCH /api/documents/{id}", manage(h.Documents.UpdateDocument))
	mux.HandleFunc("DELETE /api/documents/{id}", manage(h.Documents.DeleteDocument))
	mux.HandleFunc("GET /api/documents/{id}/content", manage(h.Documents.DownloadContent))
	mux.HandleFunc("GET /api/documents/{id}/move-targets", manage(h.Documents.MoveTargets))

	// Shares
	mux.HandleFunc("GET /api/documents/{id}/shares", manage(h.Shares.ListShares))
	mux.HandleFunc("POST /api/documents/{id}/shares", manage(h.Shares.Grant))
	mux.HandleFunc("DELETE /api/documents/{id}/shares/{granteeID}", manage(h.Shares.Revoke))
	mux.HandleFunc("GET /api/documents/{id}/share-candidates", manage(h.Shares.ListCandidates))
	mux.HandleFunc("GET /api/me/shared", anyRole(h.Shares.ListSharedWithMe))
	mux.HandleFunc("GET /api/me/shared/{id}/content", anyRole(h.Shares.DownloadShared))

	return mux
}
