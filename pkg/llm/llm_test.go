package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var finalizeFn = FunctionDeclaration{
	Name:        "finalize_conversation",
	Description: "ends the dialogue",
	Parameters: map[string]interface{}{
		"type":     "object",
		"required": []string{"projectObjective"},
	},
}

func conversation() []Message {
	return []Message{
		{Role: RoleUser, Content: "context"},
		{Role: RoleModel, Content: "hello"},
		{Role: RoleUser, Content: "I need an app"},
	}
}

func TestGeminiMapsRequestAndFunctionCall(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "k123", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [
				{"text": "ignored"},
				{"functionCall": {"name": "finalize_conversation", "args": {"projectObjective": "MVP", "urgency": "alta"}}}
			]}}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
		}`)
	}))
	defer server.Close()

	provider, err := NewProvider("gemini", "k123", WithBaseURL(server.URL))
	require.NoError(t, err)

	resp, err := provider.GenerateContent(context.Background(), conversation(), Config{
		SystemInstruction: "be nice",
		Temperature:       0.7,
		MaxOutputTokens:   500,
		Functions:         []FunctionDeclaration{finalizeFn},
	})
	require.NoError(t, err)

	call, ok := resp.FunctionCall("finalize_conversation")
	require.True(t, ok)
	assert.Equal(t, "MVP", call.Args["projectObjective"])
	assert.Equal(t, &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, resp.Usage)

	contents := captured["contents"].([]interface{})
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].(map[string]interface{})["role"])
	assert.NotNil(t, captured["systemInstruction"])
	tools := captured["tools"].([]interface{})
	decls := tools[0].(map[string]interface{})["functionDeclarations"].([]interface{})
	assert.Equal(t, "finalize_conversation", decls[0].(map[string]interface{})["name"])
}

func TestGroqMapsRolesAndToolCalls(t *testing.T) {
	var captured groqRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		io.WriteString(w, `{
			"choices": [{"message": {"content": null, "tool_calls": [
				{"type": "function", "function": {"name": "finalize_conversation", "arguments": "{\"mainFeatures\":\"login\"}"}}
			]}}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`)
	}))
	defer server.Close()

	provider, err := NewProvider("groq", "gk", WithBaseURL(server.URL))
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", provider.DefaultModel())

	resp, err := provider.GenerateContent(context.Background(), conversation(), Config{
		SystemInstruction: "sys",
		Functions:         []FunctionDeclaration{finalizeFn},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "auto", captured.ToolChoice)
	assert.Equal(t, "function", captured.Tools[0].Type)

	assert.Empty(t, resp.Text)
	call, ok := resp.FunctionCall("finalize_conversation")
	require.True(t, ok)
	assert.Equal(t, "login", call.Args["mainFeatures"])
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestFailuresAreNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			io.WriteString(w, `{"choices": [{"message": {"tool_calls": [{"function": {"name": "x", "arguments": "{broken"}}]}}]}`)
		default:
			http.Error(w, `{"error": "quota"}`, http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	gemini, _ := NewProvider("gemini", "k", WithBaseURL(server.URL))
	_, err := gemini.GenerateContent(context.Background(), conversation(), Config{})
	assert.True(t, errors.Is(err, ErrGenerationFailed))

	groq, _ := NewProvider("groq", "k", WithBaseURL(server.URL))
	_, err = groq.GenerateContent(context.Background(), conversation(), Config{})
	assert.True(t, errors.Is(err, ErrGenerationFailed))
}

func TestGeminiKeyStaysOutOfErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	provider, err := NewProvider("gemini", "SECRET-KEY-123", WithBaseURL(baseURL))
	require.NoError(t, err)

	_, err = provider.GenerateContent(context.Background(), conversation(), Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.NotContains(t, err.Error(), "key=")
}

func TestTimeoutIsGenerationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	provider, _ := NewProvider("groq", "k", WithBaseURL(server.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.GenerateContent(ctx, conversation(), Config{})
	assert.True(t, errors.Is(err, ErrGenerationFailed))
}

func TestUnknownProvider(t *testing.T) {
	_, err := NewProvider("openai", "k")
	assert.Error(t, err)
}
