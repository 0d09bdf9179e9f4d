package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/core/rag"
	"github.com/classpark/classpark-backend/internal/models"
)

type ChatHandler struct {
	composer *rag.Composer
	logger   *zap.Logger
}

func NewChatHandler(composer *rag.Composer, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{composer: composer, logger: logger}
}

type CourseChatRequest struct {
	CourseID string               `json:"courseId"`
	Messages []models.ChatMessage `json:"messages"`
}

// CourseChat answers the latest user question in the conversation, grounded
// in the course's indexed materials.
func (h *ChatHandler) CourseChat(w http.ResponseWriter, r *http.Request) {
	var req CourseChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Invalidf("invalid JSON body"))
		return
	}

	reply, err := h.composer.Answer(r.Context(), req.CourseID, req.Messages)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
