package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"google.golang.org/genai"

	"gozen/internal/config"
	"gozen/internal/logging"
	"gozen/internal/memory"
)

// OllamaClient talks to a local or remote ollama server.
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient creates a client for the configured ollama host.
func NewOllamaClient(cfg config.ModelConfig) (*OllamaClient, error) {
	host := cfg.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	if base.Scheme == "http" {
		h := base.Hostname()
		if h != "localhost" && h != "127.0.0.1" && h != "::1" {
			logging.Warn("ollama connection uses unencrypted HTTP to a remote host", "host", h)
		}
	}

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	return &OllamaClient{
		client: api.NewClient(base, httpClient),
		model:  cfg.Name,
	}, nil
}

func (c *OllamaClient) Model() string { return c.model }

func (c *OllamaClient) Close() error { return nil }

func toOllamaMessages(system string, messages []memory.Message) []api.Message {
	out := make([]api.Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, api.Message{Role: "system", Content: system})
	}
	for _, m := range messages {
		role := string(m.Role)
		// The tool role is reserved for native call results; serialized
		// results travel as user messages here.
		if m.Role == memory.RoleTool {
			role = "user"
		}
		out = append(out, api.Message{Role: role, Content: m.Content})
	}
	return out
}

// toOllamaTools converts function declarations to the ollama schema.
func toOllamaTools(decls []*genai.FunctionDeclaration) []api.Tool {
	tools := make([]api.Tool, 0, len(decls))
	for _, decl := range decls {
		params := api.ToolFunctionParameters{
			Type:       "object",
			Properties: api.NewToolPropertiesMap(),
		}
		if decl.Parameters != nil {
			params.Required = decl.Parameters.Required
			for name, schema := range decl.Parameters.Properties {
				prop := api.ToolProperty{Description: schema.Description}
				if schema.Type != "" {
					prop.Type = api.PropertyType{strings.ToLower(string(schema.Type))}
				}
				params.Properties.Set(name, prop)
			}
		}
		tools = append(tools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}

func (c *OllamaClient) chatRequest(req Request, stream bool) *api.ChatRequest {
	out := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(req.System, req.Messages),
		Stream:   &stream,
		Options:  map[string]any{},
	}
	if req.MaxTokens > 0 {
		out.Options["num_predict"] = req.MaxTokens
	}
	if req.Temperature >= 0 {
		out.Options["temperature"] = req.Temperature
	}
	if !stream && len(req.Tools) > 0 {
		out.Tools = toOllamaTools(req.Tools)
	}
	return out
}

func (c *OllamaClient) Complete(ctx context.Context, req Request) (*Response, error) {
	out := &Response{}
	err := c.client.Chat(ctx, c.chatRequest(req, false), func(resp api.ChatResponse) error {
		out.Text += resp.Message.Content
		for i, tc := range resp.Message.ToolCalls {
			id := tc.ID
			if id == "" {
				id = fmt.Sprintf("call_%d", len(out.ToolCalls)+i)
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:   id,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments.ToMap(),
			})
		}
		if resp.Done {
			out.InputTokens = resp.PromptEvalCount
			out.OutputTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	return out, nil
}

func (c *OllamaClient) Stream(ctx context.Context, req Request) (*StreamingResponse, error) {
	chunks := make(chan Chunk, 10)
	go func() {
		defer close(chunks)
		err := c.client.Chat(ctx, c.chatRequest(req, true), func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				select {
				case chunks <- Chunk{Text: resp.Message.Content}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil {
			chunks <- Chunk{Err: fmt.Errorf("ollama stream: %w", err), Done: true}
			return
		}
		chunks <- Chunk{Done: true}
	}()
	return &StreamingResponse{Chunks: chunks}, nil
}
