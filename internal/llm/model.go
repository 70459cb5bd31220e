// Package llm provides the text-generation model used for SQL generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/dataheal/dataheal/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// BedrockInvoker is the subset of the Bedrock runtime client the model uses.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Model wraps a single request/response text-generation capability.
// Bedrock is the default provider; ollama and openai exist for local
// development without AWS access.
type Model struct {
	provider  string
	modelName string
	maxTokens int

	bedrock BedrockInvoker
	chat    llms.Model
}

// NewModel creates a generation model based on configuration.
func NewModel(cfg config.Config, awsCfg aws.Config) (*Model, error) {
	m := &Model{
		provider:  cfg.Provider,
		modelName: cfg.ModelID,
		maxTokens: cfg.MaxTokens,
	}

	switch cfg.Provider {
	case config.ProviderBedrock:
		m.bedrock = bedrockruntime.NewFromConfig(awsCfg)

	case config.ProviderOllama:
		chat, err := ollama.New(
			ollama.WithModel(cfg.ModelID),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		m.chat = chat

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		chat, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.ModelID),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		m.chat = chat

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}

	return m, nil
}

// newBedrockModel wires a Bedrock-backed model from an existing client.
func newBedrockModel(client BedrockInvoker, modelID string, maxTokens int) *Model {
	return &Model{
		provider:  config.ProviderBedrock,
		modelName: modelID,
		maxTokens: maxTokens,
		bedrock:   client,
	}
}

// Model returns the generation model name.
func (m *Model) Model() string {
	return m.modelName
}

// Generate produces a single completion for a prompt, trimmed of
// surrounding whitespace. One request, no streaming, no retries.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	if m.provider == config.ProviderBedrock {
		return m.generateBedrock(ctx, prompt)
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, m.chat, prompt, llms.WithMaxTokens(m.maxTokens))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// anthropicRequest is the Bedrock messages-API request body for Anthropic
// models.
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (m *Model) generateBedrock(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        m.maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	out, err := m.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(m.modelName),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty model response")
	}

	// First text segment only; the prompt instructs a single statement.
	return strings.TrimSpace(resp.Content[0].Text), nil
}
