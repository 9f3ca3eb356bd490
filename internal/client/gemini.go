package client

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"gozen/internal/config"
	"gozen/internal/logging"
	"gozen/internal/memory"
)

// GeminiClient talks to the Gemini API via the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client from the model configuration. The API
// key is read from the configured environment variable.
func NewGeminiClient(ctx context.Context, cfg config.ModelConfig) (*GeminiClient, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "GEMINI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s", keyEnv)
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiClient{client: c, model: cfg.Name}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Close() error { return nil }

func (c *GeminiClient) generateConfig(req Request, withTools bool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature >= 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if withTools && len(req.Tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: req.Tools}}
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}
	return cfg
}

// toContents converts the neutral message log to Gemini content. Tool-role
// messages become user-role text so the transcript stays a plain dialogue.
func toContents(messages []memory.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == memory.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, toContents(req.Messages), c.generateConfig(req, true))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini request: empty response")
	}

	out := &Response{}
	for i, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call_%d", i)
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:   id,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	logging.Debug("gemini completion",
		"model", c.model,
		"tool_calls", len(out.ToolCalls),
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens)
	return out, nil
}

func (c *GeminiClient) Stream(ctx context.Context, req Request) (*StreamingResponse, error) {
	iter := c.client.Models.GenerateContentStream(ctx, c.model, toContents(req.Messages), c.generateConfig(req, false))

	chunks := make(chan Chunk, 10)
	go func() {
		defer close(chunks)
		for resp, err := range iter {
			if err != nil {
				chunks <- Chunk{Err: fmt.Errorf("gemini stream: %w", err), Done: true}
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text == "" {
					continue
				}
				select {
				case chunks <- Chunk{Text: part.Text}:
				case <-ctx.Done():
					return
				}
			}
		}
		chunks <- Chunk{Done: true}
	}()
	return &StreamingResponse{Chunks: chunks}, nil
}
