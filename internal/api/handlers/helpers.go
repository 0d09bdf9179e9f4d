package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates the core error taxonomy to HTTP exactly once.
// Responses are whole-operation: either the success body or this error shape,
// never partial output.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if nte, ok := apperr.AsNoText(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":    nte.Error(),
			"guidance": nte.Guidance(),
			"kind":     nte.Kind,
		})
		return
	}

	switch {
	case apperr.IsInvalid(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case apperr.IsQuotaExhausted(err):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": apperr.ErrQuotaExhausted.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
