package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/shifts-logger/pkg/logger"
	"github.com/go-chi/chi/middleware"
)

const filtered = "[FILTERED]"

// maxLoggedBody caps how much of a body ends up in a log line.
const maxLoggedBody = 4 << 10

// sensitiveFields are matched case-insensitively as substrings of header
// names and JSON keys.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"jwt",
	"credential",
}

// LoggingMiddleware logs each request and its response with credentials
// masked. Log lines carry the request-scoped fields set by RequestID.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := requestLogger(r, base)

			reqBody, err := peekBody(r)
			if err != nil {
				lg.Warn("reading request body for logging failed", "error", err)
			}

			lg.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", FilterHeaders(r.Header),
				"body", FilterBody(reqBody),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			respBody := &cappedBuffer{limit: maxLoggedBody + 1}
			ww.Tee(respBody)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			lg.Log(r.Context(), level, "response",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", ww.BytesWritten(),
				"body", FilterBody(respBody.Bytes()),
			)
		})
	}
}

// peekBody reads at most maxLoggedBody+1 bytes for the log line and
// leaves r.Body able to replay them ahead of the unread remainder.
func peekBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	head, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(head), r.Body),
		Closer: r.Body,
	}
	return head, err
}

type readCloser struct {
	io.Reader
	io.Closer
}

// cappedBuffer keeps the first limit bytes written and discards the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) Bytes() []byte {
	return c.buf.Bytes()
}

// requestLogger prefers base so the server's handler is used, tagging it
// with the request id when one was assigned.
func requestLogger(r *http.Request, base *slog.Logger) *slog.Logger {
	if base == nil {
		return logger.From(r.Context())
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		return base.With("request_id", reqID)
	}
	return base
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// FilterHeaders flattens headers, masking credential-bearing ones.
func FilterHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// FilterBody renders a body for logging. JSON bodies have sensitive keys
// masked at any depth; other bodies are dropped if they mention one.
func FilterBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - contains sensitive data]"
		}
		return truncate(string(body))
	}

	out, err := json.Marshal(filterJSON(data))
	if err != nil {
		return "[unloggable body]"
	}
	return truncate(string(out))
}

func filterJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = filtered
				continue
			}
			out[key] = filterJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = filterJSON(item)
		}
		return out
	default:
		return v
	}
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "...(truncated)"
}
