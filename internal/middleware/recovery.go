package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"portal/internal/httputil"
)

// Recovery logs a panicking request with the caller and stack, and answers
// 500 unless the handler already started the response.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				attrs := []any{
					"error", fmt.Sprint(v),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				}
				if p, ok := httputil.GetPrincipal(r); ok {
					attrs = append(attrs, "user_id", p.UserID, "role", p.Role)
				}
				logger.Error("panic recovered", attrs...)

				if rec.written {
					return
				}
				httputil.RespondError(rec, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
