package handler

import (
	"log/slog"
	"net/http"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/httputil"
)

// ShareHandler handles document sharing requests
type ShareHandler struct {
	shareService docsysSvc.ShareService
	docService   docsysSvc.DocumentService
	logger       *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService docsysSvc.ShareService, docService docsysSvc.DocumentService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		docService:   docService,
		logger:       logger,
	}
}

// ListShares returns every grantee of a document
// GET /api/documents/{id}/shares
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	shares, err := h.shareService.ListShares(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, shares)
}

type grantRequest struct {
	GranteeIDs  []string `json:"grantee_ids"`
	Role        string   `json:"role"`
	ShareTarget string   `json:"share_target,omitempty"` // investors only
}

// Grant shares a document with one or more grantees of a single role
// POST /api/documents/{id}/shares
func (h *ShareHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}
	if role != models.RoleInvestor && req.ShareTarget != "" {
		h.logger.Debug("share_target ignored for non-investor grant", "role", role, "share_target", req.ShareTarget)
	}
	access, err := models.NewAccess(role, models.ShareTarget(req.ShareTarget))
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}

	shares, err := h.shareService.Grant(r.Context(), r.PathValue("id"), req.GranteeIDs, access)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, shares)
}

// Revoke removes a grantee's access; revoking twice is fine
// DELETE /api/documents/{id}/shares/{granteeID}
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.shareService.Revoke(r.Context(), r.PathValue("id"), r.PathValue("granteeID")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}

// ListCandidates returns users of a role who cannot see the document yet
// GET /api/documents/{id}/share-candidates?role=
func (h *ShareHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	role := httputil.QueryString(r, "role")
	if role == "" {
		handleError(w, h.logger, domain.NewValidation("role query parameter is required"))
		return
	}

	candidates, err := h.shareService.ListShareCandidates(r.Context(), r.PathValue("id"), models.Role(role))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, candidates)
}

// ListSharedWithMe returns documents shared with the caller
// GET /api/me/shared?target=
func (h *ShareHandler) ListSharedWithMe(w http.ResponseWriter, r *http.Request) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		handleError(w, h.logger, domain.ErrUnauthorized)
		return
	}

	target := models.ShareTarget(httputil.QueryString(r, "target"))
	docs, err := h.shareService.ListSharedWith(r.Context(), p.UserID, target)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// DownloadShared streams a document the caller is a grantee of.
// Documents not shared with the caller answer 404.
// GET /api/me/shared/{id}/content
func (h *ShareHandler) DownloadShared(w http.ResponseWriter, r *http.Request) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		handleError(w, h.logger, domain.ErrUnauthorized)
		return
	}

	id := r.PathValue("id")
	if _, err := h.shareService.GetShare(r.Context(), id, p.UserID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	doc, content, err := h.docService.OpenContent(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeContent(w, h.logger, doc, content)
}
