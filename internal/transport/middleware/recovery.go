package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware turns a handler panic into a 500 and logs the stack.
// The panic value is never echoed to the client.
func RecoveryMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestLogger(r, base).Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"code":    http.StatusInternalServerError,
					"message": "internal server error",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
