package healing

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dataheal/dataheal/internal/metrics"
	"github.com/dataheal/dataheal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealPipeline(logs LogsAPI, runs JobRunsAPI, rt AgentRuntime, m MetricsAPI, n NotifierAPI) *Pipeline {
	logger := slog.New(slog.DiscardHandler)
	return NewPipeline(
		NewCollector(logs, runs, CollectorConfig{LogGroup: "/aws-glue/jobs/error", MaxLogLines: 20, MaxRunHistory: 3}, logger),
		NewInvoker(rt, time.Second, logger),
		NewRouter(m, n, "AgenticDE/SelfHealing", "arn:topic", logger),
		metrics.NewCollector(),
		logger,
	)
}

func TestHealResolved(t *testing.T) {
	rt := &stubRuntime{stream: &scriptedStream{script: []AgentEvent{
		traceEvent(),
		textEvent("Transient S3 error. Re-triggered the job; it is running again."),
	}}}
	notifier := &stubNotifier{}
	p := newHealPipeline(&stubLogs{messages: []string{"err line"}}, &stubJobRuns{}, rt, &stubMetrics{}, notifier)

	outcome := p.Heal(context.Background(), models.FailureEvent{JobName: "sales-transform", RunID: "jr_7", ErrorMessage: "boom"})

	assert.True(t, outcome.Resolved)
	assert.Equal(t, 1, outcome.AgentSteps)
	assert.Empty(t, notifier.published)
	assert.Equal(t, "heal-jr_7", rt.lastSession)
	assert.Contains(t, rt.lastInput, "Job: sales-transform")
	assert.Contains(t, rt.lastInput, "err line")
}

func TestHealEscalates(t *testing.T) {
	rt := &stubRuntime{stream: &scriptedStream{script: []AgentEvent{
		textEvent("Cannot determine root cause with confidence. ESCALATE."),
	}}}
	notifier := &stubNotifier{}
	p := newHealPipeline(&stubLogs{}, &stubJobRuns{}, rt, &stubMetrics{}, notifier)

	outcome := p.Heal(context.Background(), models.FailureEvent{JobName: "j", RunID: "r", ErrorMessage: "e"})

	assert.False(t, outcome.Resolved)
	require.Len(t, notifier.published, 1)
}

func TestHealProceedsOnDegradedEvidence(t *testing.T) {
	// Both evidence sources down: the loop still runs end to end.
	rt := &stubRuntime{stream: &scriptedStream{script: []AgentEvent{textEvent("Fixed it.")}}}
	m := &stubMetrics{}
	p := newHealPipeline(&stubLogs{err: errors.New("down")}, &stubJobRuns{err: errors.New("down")}, rt, m, &stubNotifier{})

	outcome := p.Heal(context.Background(), models.FailureEvent{JobName: "j", RunID: "r", ErrorMessage: "e"})

	assert.True(t, outcome.Resolved)
	assert.Equal(t, 1, m.calls)
	assert.Contains(t, rt.lastInput, "No log events found")
}

func TestHealAgentFailureStillRoutes(t *testing.T) {
	rt := &stubRuntime{openErr: errors.New("service unavailable")}
	m := &stubMetrics{}
	notifier := &stubNotifier{}
	p := newHealPipeline(&stubLogs{}, &stubJobRuns{}, rt, m, notifier)

	outcome := p.Heal(context.Background(), models.FailureEvent{JobName: "j", RunID: "r", ErrorMessage: "e"})

	assert.False(t, outcome.Resolved, "invocation failure folds to escalation")
	assert.Len(t, notifier.published, 1)
	assert.Equal(t, 1, m.calls)
}
