package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type stubBedrock struct {
	lastInput *bedrockruntime.InvokeModelInput
	response  string
	err       error
}

func (s *stubBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	s.lastInput = params
	if s.err != nil {
		return nil, s.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(s.response)}, nil
}

func TestGenerateBedrock(t *testing.T) {
	stub := &stubBedrock{
		response: `{"content":[{"text":"  SELECT 1\n"}]}`,
	}
	m := newBedrockModel(stub, "anthropic.claude-3-5-sonnet-20241022-v2:0", 512)

	got, err := m.Generate(context.Background(), "one row please")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "SELECT 1" {
		t.Errorf("Generate = %q, want trimmed %q", got, "SELECT 1")
	}

	var req anthropicRequest
	if err := json.Unmarshal(stub.lastInput.Body, &req); err != nil {
		t.Fatalf("request body not valid JSON: %v", err)
	}
	if req.AnthropicVersion != "bedrock-2023-05-31" {
		t.Errorf("anthropic_version = %q", req.AnthropicVersion)
	}
	if req.MaxTokens != 512 {
		t.Errorf("max_tokens = %d, want 512", req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
}

func TestGenerateBedrockErrors(t *testing.T) {
	tests := []struct {
		name     string
		stub     *stubBedrock
		wantPart string
	}{
		{"invoke failure", &stubBedrock{err: errors.New("throttled")}, "invoke model"},
		{"malformed body", &stubBedrock{response: "not json"}, "decode response"},
		{"empty content", &stubBedrock{response: `{"content":[]}`}, "empty model response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newBedrockModel(tt.stub, "model", 512)
			_, err := m.Generate(context.Background(), "q")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("error %q missing %q", err, tt.wantPart)
			}
		})
	}
}
