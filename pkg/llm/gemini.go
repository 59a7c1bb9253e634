package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel = "gemini-2.5-flash"
)

type geminiProvider struct {
	apiKey  string
	baseURL string
	client  httpDoer
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDeclaration struct {
	Name                 string                 `json:"name"`
	Description          string                 `json:"description"`
	ParametersJSONSchema map[string]interface{} `json:"parametersJsonSchema,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Tools             []geminiTool           `json:"tools,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (p *geminiProvider) Name() string         { return "gemini" }
func (p *geminiProvider) DefaultModel() string { return geminiDefaultModel }

func (p *geminiProvider) GenerateContent(ctx context.Context, messages []Message, config Config) (*Response, error) {
	model := config.Model
	if model == "" {
		model = geminiDefaultModel
	}

	request := geminiRequest{
		Contents: make([]geminiContent, 0, len(messages)),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     config.Temperature,
			MaxOutputTokens: config.MaxOutputTokens,
		},
	}
	for _, msg := range messages {
		request.Contents = append(request.Contents, geminiContent{
			Role:  string(msg.Role),
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	if config.SystemInstruction != "" {
		request.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: config.SystemInstruction}}}
	}
	if len(config.Functions) > 0 {
		declarations := make([]geminiFunctionDeclaration, 0, len(config.Functions))
		for _, fn := range config.Functions {
			declarations = append(declarations, geminiFunctionDeclaration{
				Name:                 fn.Name,
				Description:          fn.Description,
				ParametersJSONSchema: fn.Parameters,
			})
		}
		request.Tools = []geminiTool{{FunctionDeclarations: declarations}}
	}

	// Key in a header: transport errors quote the URL.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(p.baseURL, "/"), url.PathEscape(model))
	headers := map[string]string{"x-goog-api-key": p.apiKey}

	var response geminiResponse
	if err := postJSON(ctx, p.client, endpoint, headers, request, &response); err != nil {
		return nil, generationFailed(p.Name(), err)
	}
	if len(response.Candidates) == 0 {
		return nil, generationFailed(p.Name(), errors.New("no candidates in response"))
	}

	result := &Response{Model: model}
	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]interface{}{}
			}
			result.FunctionCalls = append(result.FunctionCalls, FunctionCall{Name: part.FunctionCall.Name, Args: args})
			continue
		}
		text.WriteString(part.Text)
	}
	result.Text = text.String()

	if u := response.UsageMetadata; u != nil {
		result.Usage = &Usage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}
	return result, nil
}
