package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"github.com/classpark/classpark-backend/internal/core"
)

const transcribePrompt = "Transcribe this lecture recording verbatim. Return only the spoken text, no timestamps, speaker labels or commentary."

var _ core.Transcriber = (*GeminiLLM)(nil)

// Transcribe sends the audio bytes inline and asks the model for a verbatim
// transcript.
func (g *GeminiLLM) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(0)

	resp, err := m.GenerateContent(ctx,
		genai.Text(transcribePrompt),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", mapGeminiErr(err))
	}
	return collectText(resp), nil
}
