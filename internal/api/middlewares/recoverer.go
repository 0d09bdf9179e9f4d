// Package middlewares holds the HTTP middleware specific to this service.
package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// JSONRecoverer converts panics into structured 500 responses carrying the
// message and stack, matching the error shape of every other failure path.
func JSONRecoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				stack := debug.Stack()
				logger.Error("panic recovered",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
					zap.ByteString("stack", stack),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": fmt.Sprint(rvr),
					"stack": string(stack),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
