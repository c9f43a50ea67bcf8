package augment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dvloznov/finance-insights/internal/credentials"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

const defaultAnthropicMaxTokens = 1024

// AnthropicProvider calls the Anthropic Messages API. The reply contract is
// described in the system prompt since the API has no JSON mode.
type AnthropicProvider struct {
	Model      string
	MaxTokens  int64
	BaseURL    string
	HTTPClient *http.Client
}

// NewAnthropicProvider returns a provider for model, or
// DefaultAnthropicModel when model is empty.
func NewAnthropicProvider(model string) *AnthropicProvider {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{Model: model, MaxTokens: defaultAnthropicMaxTokens}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Generate(ctx context.Context, cred credentials.Credential, req Request) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cred.Value),
		option.WithMaxRetries(0),
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	if p.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(p.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.Model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.Instruction + "\n" + describeSchema(req.Schema)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(req.Data))),
		},
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", classifyAnthropicError(p.Name(), err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

func classifyAnthropicError(provider string, err error) *Failure {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(provider, apiErr.StatusCode, apiErr.Error(), err)
	}
	return classifyTransport(provider, err)
}

// describeSchema renders the reply contract as prompt text.
func describeSchema(fields []Field) string {
	var b strings.Builder
	b.WriteString("The JSON object must have these fields:\n")
	for _, f := range fields {
		typ := string(f.Type)
		switch f.Type {
		case FieldStringArray:
			typ = fmt.Sprintf("array of exactly %d strings", f.Items)
		case FieldInteger:
			typ = "integer"
		}
		fmt.Fprintf(&b, "- %q: %s. %s\n", f.Name, typ, f.Description)
	}
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")
	return b.String()
}
