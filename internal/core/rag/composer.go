// Package rag answers course chat questions grounded in indexed material
// chunks: embed the question, run a scoped similarity search, assemble a
// context-bound prompt and call the generator once.
package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/models"
)

const (
	DefaultTopK      = 6
	DefaultThreshold = 0.2

	// Low temperature: faithfulness over creativity.
	answerTemperature = 0.2

	systemPrompt = "You are a course assistant. Answer strictly from the course material excerpts provided in the user message. " +
		"If the excerpts do not contain the information needed, say plainly that the course materials do not cover it. " +
		"Cite the excerpt numbers you relied on when possible. Never invent facts, names or citations."

	noMaterialsNote = "No course materials have been indexed for this course yet."

	fallbackReply = "I couldn't generate an answer right now. Please try again."
)

// Composer wires the retrieval side of the index: same embedding space as the
// indexer, read-only over chunk rows.
type Composer struct {
	store     core.Store
	embedder  core.EmbeddingProvider
	llm       core.LLMProvider
	topK      int
	threshold float64
	logger    *zap.Logger
}

func NewComposer(store core.Store, embedder core.EmbeddingProvider, llm core.LLMProvider, topK int, threshold float64, logger *zap.Logger) *Composer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		store:     store,
		embedder:  embedder,
		llm:       llm,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

// Answer resolves the latest user question from the conversation, retrieves
// grounding chunks scoped to the course and generates a reply.
func (c *Composer) Answer(ctx context.Context, courseID string, messages []models.ChatMessage) (string, error) {
	if strings.TrimSpace(courseID) == "" {
		return "", apperr.Invalidf("missing courseId")
	}
	question := latestUserMessage(messages)
	if question == "" {
		return "", apperr.Invalidf("no user message in conversation")
	}

	vectors, err := c.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return "", fmt.Errorf("embed question: empty result")
	}

	matches, err := c.store.SearchCourseChunks(ctx, courseID, vectors[0], c.topK, c.threshold)
	if err != nil {
		return "", fmt.Errorf("search chunks: %w", err)
	}

	userPrompt := buildUserPrompt(question, matches)

	reply, err := c.llm.Generate(ctx, systemPrompt, userPrompt, answerTemperature)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = fallbackReply
	}

	c.logger.Debug("chat answered",
		zap.String("course_id", courseID),
		zap.Int("matches", len(matches)),
	)
	return reply, nil
}

// latestUserMessage returns the content of the most recent user-authored turn.
func latestUserMessage(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

// buildUserPrompt labels each retrieved chunk with its rank and similarity
// score. Matches arrive most-similar first from the store.
func buildUserPrompt(question string, matches []models.ChunkMatch) string {
	var sb strings.Builder
	if len(matches) == 0 {
		sb.WriteString(noMaterialsNote)
	} else {
		sb.WriteString("Course material excerpts:\n")
		for i, m := range matches {
			fmt.Fprintf(&sb, "\n[%d] (similarity %s)\n%s\n", i+1, formatSimilarity(m.Similarity), m.Content)
		}
	}
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

// formatSimilarity renders a score to 3 decimals; non-finite values display
// as 0.000.
func formatSimilarity(s float64) string {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		s = 0
	}
	return fmt.Sprintf("%.3f", s)
}
