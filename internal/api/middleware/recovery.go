package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/openingcoach/openingcoach/internal/api/response"
)

// Recovery turns a handler panic into a 500 instead of killing the
// connection. Panics inside analysis goroutines are handled separately by
// the dispatcher; this only guards the request path.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic in request handler",
					"error", err,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
