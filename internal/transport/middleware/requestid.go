package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shifts-logger/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, taken from the X-Request-ID
// header when the caller sent one. The id is echoed in the response,
// stored where chi's GetReqID finds it and attached to the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		ctx = logger.WithRequestID(ctx, reqID)

		w.Header().Set(RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
