package healing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/dataheal/dataheal/internal/models"
)

const summaryLimit = 500

// MetricsAPI is the subset of the CloudWatch client the router uses.
type MetricsAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// NotifierAPI is the subset of the SNS client the router uses.
type NotifierAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Router turns a decision into its side effects: always two CloudWatch
// datapoints, plus exactly one human notification on escalation. Metric
// and notification failures are logged and swallowed; observability side
// channels never fail the triage.
type Router struct {
	metrics   MetricsAPI
	notifier  NotifierAPI
	namespace string
	topicARN  string
	logger    *slog.Logger
}

// NewRouter creates an outcome router.
func NewRouter(metrics MetricsAPI, notifier NotifierAPI, namespace, topicARN string, logger *slog.Logger) *Router {
	return &Router{
		metrics:   metrics,
		notifier:  notifier,
		namespace: namespace,
		topicARN:  topicARN,
		logger:    logger,
	}
}

// Route emits operational metrics, escalates when the decision demands it,
// and returns the triage summary.
func (r *Router) Route(ctx context.Context, event models.FailureEvent, decision models.DecisionResult) models.RoutingOutcome {
	r.emitMetrics(ctx, event.JobName, len(decision.Traces))

	if decision.Escalate {
		r.escalate(ctx, event, decision.Text)
	}

	return models.RoutingOutcome{
		JobName:    event.JobName,
		RunID:      event.RunID,
		AgentSteps: len(decision.Traces),
		Resolved:   decision.Resolved,
		Summary:    truncate(decision.Text, summaryLimit),
	}
}

func (r *Router) emitMetrics(ctx context.Context, jobName string, traceSteps int) {
	dimensions := []cwtypes.Dimension{
		{Name: aws.String("JobName"), Value: aws.String(jobName)},
	}

	_, err := r.metrics.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String("AutoRemediationAttempt"),
				Dimensions: dimensions,
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
			},
			{
				MetricName: aws.String("AgentTraceSteps"),
				Dimensions: dimensions,
				Value:      aws.Float64(float64(traceSteps)),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil {
		r.logger.Warn("metric emission failed", "job", jobName, "error", err)
	}
}

// escalationMessage is the notification body published on escalation.
type escalationMessage struct {
	Alert          string `json:"alert"`
	JobName        string `json:"job_name"`
	RunID          string `json:"run_id"`
	Error          string `json:"error"`
	AgentAnalysis  string `json:"agent_analysis"`
	ActionRequired string `json:"action_required"`
}

func (r *Router) escalate(ctx context.Context, event models.FailureEvent, analysis string) {
	message, err := json.MarshalIndent(escalationMessage{
		Alert:          "Agent could not auto-remediate",
		JobName:        event.JobName,
		RunID:          event.RunID,
		Error:          event.ErrorMessage,
		AgentAnalysis:  analysis,
		ActionRequired: "Please review and re-trigger manually",
	}, "", "  ")
	if err != nil {
		r.logger.Warn("escalation message encoding failed", "job", event.JobName, "error", err)
		return
	}

	_, err = r.notifier.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(r.topicARN),
		Subject:  aws.String(fmt.Sprintf("[dataheal] Manual intervention needed: %s", event.JobName)),
		Message:  aws.String(string(message)),
	})
	if err != nil {
		r.logger.Warn("escalation notification failed", "job", event.JobName, "error", err)
		return
	}

	r.logger.Warn("escalated to human", "job", event.JobName, "run_id", event.RunID)
}

// truncate cuts s to at most limit bytes on a rune boundary, so the
// summary never carries a split multi-byte character.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
