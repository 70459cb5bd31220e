package nlquery

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/dataheal/dataheal/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	context string
}

func (s *stubCatalog) FetchContext(ctx context.Context, database string) string {
	return s.context
}

type stubGenerator struct {
	sql string
	err error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.sql, s.err
}

func newTestPipeline(gen TextGenerator, client QueryAPI) *Pipeline {
	logger := slog.New(slog.DiscardHandler)
	executor := NewExecutor(client, ExecutorConfig{
		OutputLocation: "s3://results/",
		WorkGroup:      "primary",
		PollInterval:   time.Millisecond,
		Timeout:        100 * time.Millisecond,
		MaxResultRows:  100,
	}, logger)
	return NewPipeline(&stubCatalog{context: "  TABLE sales: region (string)"}, gen, executor, metrics.NewCollector(), logger)
}

func TestAnswerRejectedQueryNeverExecutes(t *testing.T) {
	athena := &stubAthena{}
	p := newTestPipeline(&stubGenerator{sql: "DROP TABLE sales"}, athena)

	result, qerr := p.Answer(context.Background(), "remove the sales table", "data_warehouse")

	require.Nil(t, result)
	require.NotNil(t, qerr)
	assert.Contains(t, qerr.Message, "Query blocked")
	assert.Equal(t, "DROP TABLE sales", qerr.SQL)
	assert.Zero(t, athena.submits, "rejected query must never be submitted")
}

func TestAnswerSuccess(t *testing.T) {
	athena := &stubAthena{
		states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded},
		resultRows: []types.Row{
			row("region", "revenue"),
			row("EMEA", "1200.50"),
			row("APAC", "980.00"),
		},
	}
	p := newTestPipeline(&stubGenerator{sql: "SELECT region, revenue FROM sales"}, athena)

	result, qerr := p.Answer(context.Background(), "revenue by region", "data_warehouse")

	require.Nil(t, qerr)
	require.NotNil(t, result)
	assert.Equal(t, []string{"region", "revenue"}, result.Columns)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, "SELECT region, revenue FROM sales", result.SQLGenerated)
}

func TestAnswerExecutionFailure(t *testing.T) {
	athena := &stubAthena{states: []types.QueryExecutionState{types.QueryExecutionStateFailed}}
	p := newTestPipeline(&stubGenerator{sql: "SELECT 1"}, athena)

	result, qerr := p.Answer(context.Background(), "anything", "data_warehouse")

	require.Nil(t, result)
	require.NotNil(t, qerr)
	assert.Contains(t, qerr.Message, "FAILED")
	assert.Equal(t, "SELECT 1", qerr.SQL)
	assert.Equal(t, "qid-123", qerr.QueryID)
}

func TestAnswerTimeout(t *testing.T) {
	athena := &stubAthena{states: []types.QueryExecutionState{types.QueryExecutionStateRunning}}
	p := newTestPipeline(&stubGenerator{sql: "SELECT 1"}, athena)

	result, qerr := p.Answer(context.Background(), "anything", "data_warehouse")

	require.Nil(t, result)
	require.NotNil(t, qerr)
	assert.Contains(t, qerr.Message, "TIMEOUT")
}

func TestAnswerGenerationFailure(t *testing.T) {
	athena := &stubAthena{}
	p := newTestPipeline(&stubGenerator{err: errors.New("model unavailable")}, athena)

	result, qerr := p.Answer(context.Background(), "anything", "data_warehouse")

	require.Nil(t, result)
	require.NotNil(t, qerr)
	assert.Contains(t, qerr.Message, "SQL generation failed")
	assert.Zero(t, athena.submits)
}
