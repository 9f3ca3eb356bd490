package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// RPCCallTool invokes a method on an external JSON-RPC 2.0 endpoint, used
// to reach local tool servers.
type RPCCallTool struct {
	client *http.Client
}

func NewRPCCallTool(timeout time.Duration) *RPCCallTool {
	return &RPCCallTool{client: newHTTPClient(timeout)}
}

func (t *RPCCallTool) Name() string { return "rpc_call" }

func (t *RPCCallTool) Description() string {
	return "Call a method on a JSON-RPC 2.0 endpoint"
}

func (t *RPCCallTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"endpoint": {Type: genai.TypeString, Description: "HTTP URL of the JSON-RPC server"},
				"method":   {Type: genai.TypeString, Description: "Method name to invoke"},
				"params":   {Type: genai.TypeObject, Description: "Method parameters"},
			},
			Required: []string{"endpoint", "method"},
		},
	}
}

func (t *RPCCallTool) Validate(args map[string]any) error {
	if err := requireString(args, "endpoint"); err != nil {
		return err
	}
	endpoint, _ := GetString(args, "endpoint")
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{Field: "endpoint", Message: "must be an http or https URL"}
	}
	return requireString(args, "method")
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (t *RPCCallTool) Execute(ctx context.Context, args map[string]any) Result {
	endpoint, _ := GetString(args, "endpoint")
	method, _ := GetString(args, "method")
	params := args["params"]

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return Fail("encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Fail("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Fail("calling %s: %v", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return Fail("reading response: %v", err)
	}
	if resp.StatusCode >= 400 {
		return Fail("calling %s: HTTP %d", endpoint, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return Fail("decoding response: %v", err)
	}
	if rpcResp.Error != nil {
		return Fail("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return OkWithMeta(string(rpcResp.Result), map[string]any{"method": method})
}
