package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrGenerationFailed classifies every generation-service failure: timeout,
// transport error, non-2xx status or an empty completion.
var ErrGenerationFailed = errors.New("generation service failure")

// Roles of chat-completions messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged message sent to the generation service.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the opaque boundary to the external text-generation
// service: ordered messages in, generated text out. It is the only call in
// a turn that can fail for reasons outside this process.
type Generator interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// GroqRequest represents the request body for the Groq chat-completions
// API (OpenAI-compatible).
type GroqRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// GroqResponse represents the response from the Groq chat-completions API.
type GroqResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage map[string]interface{} `json:"usage"`
}

const (
	defaultGroqURL   = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "llama3-70b-8192"

	// generationTimeout bounds the single highest-latency operation in a
	// turn. A timeout surfaces as ErrGenerationFailed like any other
	// service failure.
	generationTimeout = 60 * time.Second
)

// GroqService calls the Groq chat-completions API.
type GroqService struct {
	apiKey      string
	model       string
	url         string
	temperature float64
	httpClient  *http.Client
}

// NewGroqService creates a Groq client from the environment. A missing API
// key is not fatal here; calls fail with ErrGenerationFailed instead, so
// the server can still run the intake stage without credentials.
func NewGroqService() *GroqService {
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = defaultGroqModel
	}
	url := os.Getenv("GROQ_API_URL")
	if url == "" {
		url = defaultGroqURL
	}

	return &GroqService{
		apiKey:      os.Getenv("GROQ_API_KEY"),
		model:       model,
		url:         url,
		temperature: 0.1,
		httpClient:  &http.Client{Timeout: generationTimeout},
	}
}

// Configured reports whether an API key is available.
func (g *GroqService) Configured() bool {
	return g.apiKey != ""
}

// Complete implements Generator.
func (g *GroqService) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: GROQ_API_KEY not set", ErrGenerationFailed)
	}

	reqBody := GroqRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrGenerationFailed, err)
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error: %s - %s", ErrGenerationFailed, resp.Status, string(body))
	}

	var apiResp GroqResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v", ErrGenerationFailed, err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from Groq", ErrGenerationFailed)
	}

	return apiResp.Choices[0].Message.Content, nil
}
