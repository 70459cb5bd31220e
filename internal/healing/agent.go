package healing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/dataheal/dataheal/internal/models"
)

// AgentEvent is one element of a decision stream: a text fragment or a
// trace record, never both.
type AgentEvent struct {
	Text  string
	Trace *models.TraceStep
}

// AgentStream yields agent events until the underlying response stream
// terminates.
type AgentStream interface {
	Events() <-chan AgentEvent
	Err() error
	Close() error
}

// AgentRuntime opens one streaming decision session per invocation.
type AgentRuntime interface {
	OpenStream(ctx context.Context, sessionID, inputText string) (AgentStream, error)
}

// BedrockAgent is the Bedrock agent runtime implementation of AgentRuntime.
type BedrockAgent struct {
	client  *bedrockagentruntime.Client
	agentID string
	aliasID string
}

// NewBedrockAgent creates a Bedrock-backed agent runtime.
func NewBedrockAgent(awsCfg aws.Config, agentID, aliasID string) *BedrockAgent {
	return &BedrockAgent{
		client:  bedrockagentruntime.NewFromConfig(awsCfg),
		agentID: agentID,
		aliasID: aliasID,
	}
}

// OpenStream invokes the agent with tracing enabled and adapts the response
// stream into AgentEvents.
func (b *BedrockAgent) OpenStream(ctx context.Context, sessionID, inputText string) (AgentStream, error) {
	out, err := b.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(b.agentID),
		AgentAliasId: aws.String(b.aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
		EnableTrace:  aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke agent: %w", err)
	}
	return newBedrockStream(out.GetStream()), nil
}

// responseStreamSource is the subset of the SDK event stream the adapter
// consumes.
type responseStreamSource interface {
	Events() <-chan agenttypes.ResponseStream
	Err() error
	Close() error
}

type bedrockStream struct {
	inner     responseStreamSource
	events    chan AgentEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newBedrockStream(inner responseStreamSource) *bedrockStream {
	s := &bedrockStream{
		inner:  inner,
		events: make(chan AgentEvent),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

// pump converts the SDK's union stream into discriminated AgentEvents.
// Only orchestration traces count as reasoning steps. Every send races
// against done so a consumer that stops receiving cannot strand the
// goroutine on the unbuffered channel.
func (s *bedrockStream) pump() {
	defer close(s.events)
	for ev := range s.inner.Events() {
		var out AgentEvent
		switch v := ev.(type) {
		case *agenttypes.ResponseStreamMemberChunk:
			out = AgentEvent{Text: string(v.Value.Bytes)}
		case *agenttypes.ResponseStreamMemberTrace:
			trace, ok := v.Value.Trace.(*agenttypes.TraceMemberOrchestrationTrace)
			if !ok {
				continue
			}
			out = AgentEvent{Trace: &models.TraceStep{Payload: trace.Value}}
		default:
			continue
		}

		select {
		case s.events <- out:
		case <-s.done:
			return
		}
	}
}

func (s *bedrockStream) Events() <-chan AgentEvent { return s.events }
func (s *bedrockStream) Err() error                { return s.inner.Err() }

// Close releases the pump goroutine before closing the SDK stream, so an
// abandoned invocation (deadline, cancellation) leaks nothing.
func (s *bedrockStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.inner.Close()
}

// Invoker runs one decision invocation: it consumes the stream to
// completion, folding text fragments into a narrative and collecting trace
// steps. Synchronous from the caller's perspective.
type Invoker struct {
	runtime AgentRuntime
	timeout time.Duration
	logger  *slog.Logger
}

// NewInvoker creates a decision invoker. A timeout of zero disables the
// invocation deadline.
func NewInvoker(runtime AgentRuntime, timeout time.Duration, logger *slog.Logger) *Invoker {
	return &Invoker{
		runtime: runtime,
		timeout: timeout,
		logger:  logger,
	}
}

// Invoke opens a streaming session under sessionID and blocks until it
// completes. Any invocation failure, including a deadline hit, folds into
// an escalating result: silent loss of a triage response is worse than an
// unnecessary human alert.
func (i *Invoker) Invoke(ctx context.Context, prompt, sessionID string) models.DecisionResult {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	stream, err := i.runtime.OpenStream(ctx, sessionID, prompt)
	if err != nil {
		i.logger.Error("agent invocation failed", "session", sessionID, "error", err)
		return failureResult(err, nil)
	}
	defer stream.Close()

	var text strings.Builder
	var traces []models.TraceStep

loop:
	for {
		select {
		case <-ctx.Done():
			i.logger.Error("agent stream deadline exceeded", "session", sessionID, "error", ctx.Err())
			return failureResult(ctx.Err(), traces)
		case ev, ok := <-stream.Events():
			if !ok {
				break loop
			}
			if ev.Trace != nil {
				traces = append(traces, *ev.Trace)
			} else {
				text.WriteString(ev.Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		i.logger.Error("agent stream failed", "session", sessionID, "error", err)
		return failureResult(err, traces)
	}

	narrative := text.String()
	escalate := DetectEscalation(narrative)
	return models.DecisionResult{
		Text:     narrative,
		Traces:   traces,
		Escalate: escalate,
		Resolved: !escalate,
	}
}

// DetectEscalation inspects a decision narrative for the escalation
// markers. A heuristic by contract: structured decision output would
// replace it in a future revision.
func DetectEscalation(narrative string) bool {
	upper := strings.ToUpper(narrative)
	return strings.Contains(upper, "ESCALATE") || strings.Contains(upper, "HUMAN")
}

func failureResult(err error, traces []models.TraceStep) models.DecisionResult {
	return models.DecisionResult{
		Text:     fmt.Sprintf("Agent invocation failed (%v). Escalating to a human operator.", err),
		Traces:   traces,
		Escalate: true,
		Resolved: false,
	}
}
