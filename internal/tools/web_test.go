package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebFetchToolExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><script>ignored()</script></head><body><p>visible text</p></body></html>`))
	}))
	defer srv.Close()

	res := NewWebFetchTool(5*time.Second).Execute(context.Background(), map[string]any{"url": srv.URL})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "visible text")
	assert.NotContains(t, res.Output, "ignored()")
}

func TestWebFetchToolPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("raw body"))
	}))
	defer srv.Close()

	res := NewWebFetchTool(5*time.Second).Execute(context.Background(), map[string]any{"url": srv.URL})
	require.True(t, res.Success)
	assert.Equal(t, "raw body", res.Output)
}

func TestWebFetchToolHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewWebFetchTool(5*time.Second).Execute(context.Background(), map[string]any{"url": srv.URL})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "404")
}

func TestWebFetchToolValidatesScheme(t *testing.T) {
	tool := NewWebFetchTool(time.Second)
	assert.Error(t, tool.Validate(map[string]any{"url": "ftp://example.com"}))
	assert.NoError(t, tool.Validate(map[string]any{"url": "https://example.com"}))
}

func TestWebSearchToolParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<a class="result__a" href="https://example.com/one">First Result</a>
			<a class="result__a" href="https://example.com/two">Second Result</a>
			<a href="https://example.com/ad">Not a result</a>
		</body></html>`))
	}))
	defer srv.Close()

	tool := NewWebSearchTool(5 * time.Second)
	tool.endpoint = srv.URL

	res := tool.Execute(context.Background(), map[string]any{"query": "anything"})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "First Result")
	assert.Contains(t, res.Output, "https://example.com/two")
	assert.NotContains(t, res.Output, "Not a result")
}

func TestCleanResultURLUnwrapsRedirect(t *testing.T) {
	wrapped := "https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=abc"
	assert.Equal(t, "https://example.com/page", cleanResultURL(wrapped))
	assert.Equal(t, "https://direct.example.com", cleanResultURL("https://direct.example.com"))
}
