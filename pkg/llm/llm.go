// Package llm is a uniform client over interchangeable generative-model backends.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrGenerationFailed wraps every backend failure, whatever its origin.
var ErrGenerationFailed = errors.New("llm: generation failed")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role    Role
	Content string
}

// FunctionDeclaration describes a function the model may call. Parameters is a JSON schema.
type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

type Config struct {
	Model             string
	SystemInstruction string
	Temperature       float64
	MaxOutputTokens   int
	Functions         []FunctionDeclaration
}

type FunctionCall struct {
	Name string
	Args map[string]interface{}
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text          string
	Model         string
	FunctionCalls []FunctionCall
	Usage         *Usage
}

// FunctionCall returns the first call with the given name.
func (r *Response) FunctionCall(name string) (*FunctionCall, bool) {
	for i := range r.FunctionCalls {
		if r.FunctionCalls[i].Name == name {
			return &r.FunctionCalls[i], true
		}
	}
	return nil, false
}

type Provider interface {
	Name() string
	DefaultModel() string
	GenerateContent(ctx context.Context, messages []Message, config Config) (*Response, error)
}

type options struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*options)

// WithBaseURL points the backend at another endpoint root.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// NewProvider selects a backend by tag once, at startup.
func NewProvider(tag, apiKey string, opts ...Option) (Provider, error) {
	o := options{httpClient: &http.Client{Timeout: 60 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	switch tag {
	case "gemini":
		if o.baseURL == "" {
			o.baseURL = geminiBaseURL
		}
		return &geminiProvider{apiKey: apiKey, baseURL: o.baseURL, client: o.httpClient}, nil
	case "groq":
		if o.baseURL == "" {
			o.baseURL = groqBaseURL
		}
		return &groqProvider{apiKey: apiKey, baseURL: o.baseURL, client: o.httpClient}, nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", tag)
	}
}

func generationFailed(backend string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrGenerationFailed, backend, err)
}
