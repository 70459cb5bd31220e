package nlquery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// ExecutionState is the terminal state of one query execution. Timeout is
// synthetic: the poller gave up before the service reported a terminal
// state.
type ExecutionState string

const (
	StateSucceeded ExecutionState = "SUCCEEDED"
	StateFailed    ExecutionState = "FAILED"
	StateCancelled ExecutionState = "CANCELLED"
	StateTimeout   ExecutionState = "TIMEOUT"
)

// QueryAPI is the subset of the Athena client the executor uses.
type QueryAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// Executor submits queries to Athena and polls them to a terminal state.
type Executor struct {
	client         QueryAPI
	outputLocation string
	workGroup      string
	pollInterval   time.Duration
	timeout        time.Duration
	maxResultRows  int32
	logger         *slog.Logger
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	OutputLocation string
	WorkGroup      string
	PollInterval   time.Duration
	Timeout        time.Duration
	MaxResultRows  int32
}

// NewExecutor creates an Athena executor.
func NewExecutor(client QueryAPI, cfg ExecutorConfig, logger *slog.Logger) *Executor {
	return &Executor{
		client:         client,
		outputLocation: cfg.OutputLocation,
		workGroup:      cfg.WorkGroup,
		pollInterval:   cfg.PollInterval,
		timeout:        cfg.Timeout,
		maxResultRows:  cfg.MaxResultRows,
		logger:         logger,
	}
}

// Submit starts a query execution and returns its execution id. The handle
// is valid only for the lifetime of this submission.
func (e *Executor) Submit(ctx context.Context, sql, database string) (string, error) {
	out, err := e.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(database),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(e.outputLocation),
		},
		WorkGroup: aws.String(e.workGroup),
	})
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}
	return aws.ToString(out.QueryExecutionId), nil
}

// Poll checks the execution at a fixed interval until it reaches a terminal
// state or the timeout elapses. Worst-case blocking is capped at the
// configured timeout regardless of service behavior.
func (e *Executor) Poll(ctx context.Context, queryID string) (ExecutionState, *types.QueryExecutionStatistics, error) {
	attempts := int(e.timeout / e.pollInterval)
	for i := 0; i < attempts; i++ {
		out, err := e.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(queryID),
		})
		if err != nil {
			return "", nil, fmt.Errorf("get query execution: %w", err)
		}

		status := out.QueryExecution.Status
		switch status.State {
		case types.QueryExecutionStateSucceeded:
			return StateSucceeded, out.QueryExecution.Statistics, nil
		case types.QueryExecutionStateFailed:
			return StateFailed, out.QueryExecution.Statistics, nil
		case types.QueryExecutionStateCancelled:
			return StateCancelled, out.QueryExecution.Statistics, nil
		}

		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(e.pollInterval):
		}
	}

	e.logger.Warn("query did not reach a terminal state before deadline",
		"query_id", queryID, "timeout", e.timeout)
	return StateTimeout, nil, nil
}

// FetchRows retrieves up to maxResultRows result rows (header included).
func (e *Executor) FetchRows(ctx context.Context, queryID string) ([]types.Row, error) {
	out, err := e.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(queryID),
		MaxResults:       aws.Int32(e.maxResultRows),
	})
	if err != nil {
		return nil, fmt.Errorf("get query results: %w", err)
	}
	if out.ResultSet == nil {
		return nil, nil
	}
	return out.ResultSet.Rows, nil
}
