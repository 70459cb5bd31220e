package healing

import (
	"context"
	"log/slog"
	"time"

	"github.com/dataheal/dataheal/internal/metrics"
	"github.com/dataheal/dataheal/internal/models"
)

// Pipeline composes evidence collection, prompt building, agent invocation,
// and outcome routing for one failure event.
type Pipeline struct {
	evidence  *Collector
	invoker   *Invoker
	router    *Router
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewPipeline creates a self-healing pipeline.
func NewPipeline(evidence *Collector, invoker *Invoker, router *Router, collector *metrics.Collector, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		evidence:  evidence,
		invoker:   invoker,
		router:    router,
		collector: collector,
		logger:    logger,
	}
}

// Heal runs one triage for a failure event and returns the routing
// outcome. Every stage completes before the next begins; the only
// externally-variable waits are the agent stream and the evidence fetches.
func (p *Pipeline) Heal(ctx context.Context, event models.FailureEvent) models.RoutingOutcome {
	p.logger.Info("pipeline failure detected", "job", event.JobName, "run_id", event.RunID)

	start := time.Now()
	evidence := p.evidence.Collect(ctx, event.JobName, event.RunID)
	p.collector.RecordTiming(metrics.OpEvidence, time.Since(start))

	prompt := BuildPrompt(event, evidence)

	start = time.Now()
	decision := p.invoker.Invoke(ctx, prompt, event.SessionID())
	p.collector.RecordTiming(metrics.OpAgentInvoke, time.Since(start))

	p.logger.Info("agent decision",
		"job", event.JobName,
		"steps", len(decision.Traces),
		"escalate", decision.Escalate,
	)

	return p.router.Route(ctx, event, decision)
}
