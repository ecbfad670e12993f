package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/textworld/internal/api/apierr"
	"github.com/mcoot/textworld/internal/middleware"
)

// Recovery answers a panicking command with an INTERNAL_ERROR body carrying the request id
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, requestID string) {
		apierr.WriteError(w, apierr.NewInternalError(requestID))
	})
}
