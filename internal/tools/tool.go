// Package tools implements the operations agents may invoke: file
// manipulation, search, shell execution, web access, and git.
package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Tool defines the interface for all tools.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Declaration returns the function declaration sent to the model.
	Declaration() *genai.FunctionDeclaration

	// Validate validates the arguments before execution.
	Validate(args map[string]any) error

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]any) Result
}

// MaxOutputChars caps tool output echoed back to the model when no limit
// is configured. Output beyond the cap is truncated with a marker so
// context growth stays bounded.
const MaxOutputChars = 16000

// Result is the outcome of a tool execution. Immutable once produced.
type Result struct {
	Success  bool           `json:"success"`
	Output   string         `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Ok creates a successful result.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// OkWithMeta creates a successful result carrying metadata.
func OkWithMeta(output string, meta map[string]any) Result {
	return Result{Success: true, Output: output, Metadata: meta}
}

// Fail creates a failed result.
func Fail(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// APIString renders the result for the model, truncated to limit
// characters. A non-positive limit falls back to MaxOutputChars.
func (r Result) APIString(limit int) string {
	if limit <= 0 {
		limit = MaxOutputChars
	}
	s := r.Output
	if !r.Success {
		s = "ERROR: " + r.Error
	}
	if len(s) > limit {
		s = s[:limit] + "\n... [output truncated]"
	}
	return s
}

// ToMap converts the result to the function-response payload.
func (r Result) ToMap() map[string]any {
	m := map[string]any{"success": r.Success}
	if r.Success {
		m["output"] = r.APIString(0)
	} else {
		m["error"] = r.Error
	}
	for k, v := range r.Metadata {
		m[k] = v
	}
	return m
}

// ValidationError reports a bad tool argument.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// GetString extracts a string argument from the args map.
func GetString(args map[string]any, key string) (string, bool) {
	val, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// GetStringDefault extracts a string argument with a default value.
func GetStringDefault(args map[string]any, key, def string) string {
	if v, ok := GetString(args, key); ok {
		return v
	}
	return def
}

// GetInt extracts an integer argument from the args map. Backends may
// deliver numbers as float64.
func GetInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// GetIntDefault extracts an integer argument with a default value.
func GetIntDefault(args map[string]any, key string, def int) int {
	if v, ok := GetInt(args, key); ok {
		return v
	}
	return def
}

// GetBool extracts a boolean argument from the args map.
func GetBool(args map[string]any, key string) (bool, bool) {
	b, ok := args[key].(bool)
	return b, ok
}

// GetBoolDefault extracts a boolean argument with a default value.
func GetBoolDefault(args map[string]any, key string, def bool) bool {
	if v, ok := GetBool(args, key); ok {
		return v
	}
	return def
}

// requireString validates that a non-empty string argument is present.
func requireString(args map[string]any, key string) error {
	s, ok := GetString(args, key)
	if !ok {
		return ValidationError{Field: key, Message: "required string argument missing"}
	}
	if s == "" {
		return ValidationError{Field: key, Message: "must not be empty"}
	}
	return nil
}
