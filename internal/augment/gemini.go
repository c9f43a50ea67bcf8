package augment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dvloznov/finance-insights/internal/credentials"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider calls the Gemini API in JSON mode with a response schema.
type GeminiProvider struct {
	Model string
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL    string
	HTTPClient *http.Client
}

// NewGeminiProvider returns a provider for model, or DefaultGeminiModel
// when model is empty.
func NewGeminiProvider(model string) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{Model: model}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Generate builds a client per call because the credential is resolved per
// request.
func (p *GeminiProvider) Generate(ctx context.Context, cred credentials.Credential, req Request) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:     cred.Value,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.HTTPClient,
	}
	if p.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", classifyTransport(p.Name(), fmt.Errorf("create genai client: %w", err))
	}

	resp, err := client.Models.GenerateContent(ctx, p.Model, genai.Text(string(req.Data)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(req.Schema),
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", classifyGenAIError(p.Name(), err)
	}

	return resp.Text(), nil
}

func classifyGenAIError(provider string, err error) *Failure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(provider, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyStatus(provider, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return classifyTransport(provider, err)
}

func geminiSchema(fields []Field) *genai.Schema {
	if len(fields) == 0 {
		return nil
	}
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		prop := &genai.Schema{Description: f.Description}
		switch f.Type {
		case FieldInteger:
			prop.Type = genai.TypeInteger
		case FieldStringArray:
			prop.Type = genai.TypeArray
			prop.Items = &genai.Schema{Type: genai.TypeString}
			if f.Items > 0 {
				prop.MinItems = genai.Ptr(int64(f.Items))
				prop.MaxItems = genai.Ptr(int64(f.Items))
			}
		default:
			prop.Type = genai.TypeString
		}
		schema.Properties[f.Name] = prop
		schema.Required = append(schema.Required, f.Name)
		schema.PropertyOrdering = append(schema.PropertyOrdering, f.Name)
	}
	return schema
}
