package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response for a request whose handler panicked
// requestID is empty when RequestID does not run first.
type PanicHandler func(w http.ResponseWriter, r *http.Request, requestID string)

// Recovery turns handler panics into a logged error and a PanicHandler response
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					id := GetRequestID(r.Context())
					logger.Error("handler panicked",
						slog.String("request_id", id),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Any("panic", err),
						slog.String("stack", string(debug.Stack())),
					)
					handler(w, r, id)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPanicHandler answers 500 with the request id so the client can quote it
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, requestID string) {
	msg := "Internal Server Error"
	if requestID != "" {
		msg += " (request " + requestID + ")"
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
