package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/core/ingest"
)

type IndexHandler struct {
	indexer *ingest.Indexer
	logger  *zap.Logger
}

func NewIndexHandler(indexer *ingest.Indexer, logger *zap.Logger) *IndexHandler {
	return &IndexHandler{indexer: indexer, logger: logger}
}

type IndexMaterialRequest struct {
	MaterialID string `json:"materialId"`
}

// IndexMaterial runs the full ingestion pipeline for one material and reports
// the number of chunks written.
func (h *IndexHandler) IndexMaterial(w http.ResponseWriter, r *http.Request) {
	var req IndexMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Invalidf("invalid JSON body"))
		return
	}
	if req.MaterialID == "" {
		writeError(w, h.logger, apperr.Invalidf("missing materialId"))
		return
	}

	count, err := h.indexer.IndexMaterial(r.Context(), req.MaterialID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"chunks": count,
	})
}
