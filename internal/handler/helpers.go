package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"portal/internal/domain"
	"portal/internal/httputil"
)

// handleError converts domain errors to a single problem response
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		cycleErr    *domain.CycleError
		notFoundErr *domain.NotFoundError
		tooLarge    *http.MaxBytesError
		httpErr     domain.HTTPError
	)

	switch {
	case errors.As(err, &cycleErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, cycleErr.Error(), map[string]any{
			"folder_id": cycleErr.FolderID,
			"target_id": cycleErr.TargetID,
		})
	case errors.As(err, &notFoundErr):
		httputil.RespondErrorWithExtras(w, http.StatusNotFound, notFoundErr.Error(), map[string]any{
			"resource": notFoundErr.Resource,
			"id":       notFoundErr.ID,
		})
	case errors.As(err, &tooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// badRequest reports a malformed body or parameter
func badRequest(w http.ResponseWriter, logger *slog.Logger, err error) {
	handleError(w, logger, domain.NewValidation("%v", err))
}
