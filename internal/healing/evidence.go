// Package healing implements the failure-triage decision loop: evidence
// collection, prompt building, agent invocation, and outcome routing.
package healing

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/dataheal/dataheal/internal/models"
)

// LogsAPI is the subset of the CloudWatch Logs client the collector uses.
type LogsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// JobRunsAPI is the subset of the Glue client the collector uses.
type JobRunsAPI interface {
	GetJobRuns(ctx context.Context, params *glue.GetJobRunsInput, optFns ...func(*glue.Options)) (*glue.GetJobRunsOutput, error)
}

// Collector gathers best-effort context for a failed run. Both sub-fetches
// degrade independently: a failure in either yields an empty value for that
// part only, never an error. Triage proceeds on partial evidence.
type Collector struct {
	logs          LogsAPI
	glue          JobRunsAPI
	logGroup      string
	maxLogLines   int32
	maxRunHistory int32
	logger        *slog.Logger
}

// CollectorConfig configures an evidence collector.
type CollectorConfig struct {
	LogGroup      string
	MaxLogLines   int32
	MaxRunHistory int32
}

// NewCollector creates an evidence collector.
func NewCollector(logs LogsAPI, glueClient JobRunsAPI, cfg CollectorConfig, logger *slog.Logger) *Collector {
	return &Collector{
		logs:          logs,
		glue:          glueClient,
		logGroup:      cfg.LogGroup,
		maxLogLines:   cfg.MaxLogLines,
		maxRunHistory: cfg.MaxRunHistory,
		logger:        logger,
	}
}

// Collect fetches recent error log lines filtered by run id, plus the most
// recent prior runs of the job.
func (c *Collector) Collect(ctx context.Context, jobName, runID string) models.Evidence {
	return models.Evidence{
		LogLines:   c.fetchLogLines(ctx, runID),
		RunHistory: c.fetchRunHistory(ctx, jobName),
	}
}

func (c *Collector) fetchLogLines(ctx context.Context, runID string) []string {
	out, err := c.logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName:  aws.String(c.logGroup),
		FilterPattern: aws.String(runID),
		Limit:         aws.Int32(c.maxLogLines),
	})
	if err != nil {
		c.logger.Warn("could not retrieve error logs", "run_id", runID, "error", err)
		return nil
	}

	lines := make([]string, 0, len(out.Events))
	for _, ev := range out.Events {
		lines = append(lines, aws.ToString(ev.Message))
	}
	return lines
}

func (c *Collector) fetchRunHistory(ctx context.Context, jobName string) []models.RunRecord {
	out, err := c.glue.GetJobRuns(ctx, &glue.GetJobRunsInput{
		JobName:    aws.String(jobName),
		MaxResults: aws.Int32(c.maxRunHistory),
	})
	if err != nil {
		c.logger.Warn("could not retrieve run history", "job", jobName, "error", err)
		return nil
	}

	records := make([]models.RunRecord, 0, len(out.JobRuns))
	for _, run := range out.JobRuns {
		records = append(records, models.RunRecord{
			RunID:   aws.ToString(run.Id),
			State:   string(run.JobRunState),
			Started: models.FormatStartTime(run.StartedOn),
			Error:   aws.ToString(run.ErrorMessage),
		})
	}
	return records
}
