package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	groqDefaultModel = "llama-3.3-70b-versatile"
)

// groqProvider speaks the OpenAI-compatible chat completions API.
type groqProvider struct {
	apiKey  string
	baseURL string
	client  httpDoer
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type groqTool struct {
	Type     string       `json:"type"`
	Function groqFunction `json:"function"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Tools       []groqTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content   *string `json:"content"`
			ToolCalls []struct {
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *groqProvider) Name() string         { return "groq" }
func (p *groqProvider) DefaultModel() string { return groqDefaultModel }

func (p *groqProvider) GenerateContent(ctx context.Context, messages []Message, config Config) (*Response, error) {
	model := config.Model
	if model == "" {
		model = groqDefaultModel
	}

	request := groqRequest{
		Model:       model,
		Messages:    make([]groqMessage, 0, len(messages)+1),
		Temperature: config.Temperature,
		MaxTokens:   config.MaxOutputTokens,
	}
	if config.SystemInstruction != "" {
		request.Messages = append(request.Messages, groqMessage{Role: "system", Content: config.SystemInstruction})
	}
	for _, msg := range messages {
		role := "user"
		if msg.Role == RoleModel {
			role = "assistant"
		}
		request.Messages = append(request.Messages, groqMessage{Role: role, Content: msg.Content})
	}
	if len(config.Functions) > 0 {
		for _, fn := range config.Functions {
			request.Tools = append(request.Tools, groqTool{
				Type:     "function",
				Function: groqFunction{Name: fn.Name, Description: fn.Description, Parameters: fn.Parameters},
			})
		}
		request.ToolChoice = "auto"
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	var response groqResponse
	if err := postJSON(ctx, p.client, strings.TrimRight(p.baseURL, "/")+"/chat/completions", headers, request, &response); err != nil {
		return nil, generationFailed(p.Name(), err)
	}
	if len(response.Choices) == 0 {
		return nil, generationFailed(p.Name(), errors.New("no choices in response"))
	}

	message := response.Choices[0].Message
	result := &Response{Model: model}
	if message.Content != nil {
		result.Text = *message.Content
	}
	for _, call := range message.ToolCalls {
		args := map[string]interface{}{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, generationFailed(p.Name(), err)
			}
		}
		result.FunctionCalls = append(result.FunctionCalls, FunctionCall{Name: call.Function.Name, Args: args})
	}

	if u := response.Usage; u != nil {
		result.Usage = &Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return result, nil
}
