package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/apperr"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to the OpenAI REST API (or any compatible endpoint) and
// implements both the embedding and generation provider interfaces.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	embedModel string
	genModel   string
	httpClient *http.Client
}

var (
	_ core.EmbeddingProvider = (*OpenAIClient)(nil)
	_ core.LLMProvider       = (*OpenAIClient)(nil)
)

func NewOpenAIClient(apiKey, baseURL, embedModel, genModel string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	if genModel == "" {
		genModel = "gpt-4o-mini"
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		genModel:   genModel,
		httpClient: http.DefaultClient,
	}, nil
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *OpenAIClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out openAIEmbedResponse
	if err := c.post(ctx, "/embeddings", openAIEmbedRequest{Model: c.embedModel, Input: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d texts", len(out.Data), len(texts))
	}
	// The API is documented to preserve order but carries an index; honor it.
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	vectors := make([][]float32, 0, len(out.Data))
	for _, d := range out.Data {
		vectors = append(vectors, d.Embedding)
	}
	return vectors, nil
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIChatMsg `json:"messages"`
	Temperature float32         `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	msgs := make([]openAIChatMsg, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, openAIChatMsg{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, openAIChatMsg{Role: "user", Content: userPrompt})

	var out openAIChatResponse
	if err := c.post(ctx, "/chat/completions", openAIChatRequest{
		Model:       c.genModel,
		Messages:    msgs,
		Temperature: temperature,
	}, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		var apiErr openAIErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		if resp.StatusCode == http.StatusTooManyRequests || apiErr.Error.Code == "insufficient_quota" {
			return fmt.Errorf("%w: %s", apperr.ErrQuotaExhausted, apiErr.Error.Message)
		}
		return fmt.Errorf("openai request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
