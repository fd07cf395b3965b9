package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/platform/logger"
)

// Recovery turns panics into a 500 envelope with the generic message
// "internal server error". In dev mode the stack trace is attached to the
// response data; in prod it stays in the logs only.
func Recovery(dev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					// ALLOW-PANIC: net/http uses this to abort the handler
					panic(p)
				}

				stack := debug.Stack()
				log := logger.FromContext(r.Context())
				log.Error("panic recovered",
					slog.Any("panic", p),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(stack)))

				envelope := shared.Envelope{
					Error:   true,
					Message: "internal server error",
					TraceID: shared.GetTraceID(r.Context()),
				}
				if dev {
					envelope.Data = map[string]string{"stack": string(stack)}
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(w).Encode(envelope); err != nil {
					log.Error("failed to encode panic response", "error", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
