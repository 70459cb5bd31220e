package nlquery

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cells ...string) types.Row {
	data := make([]types.Datum, len(cells))
	for i, c := range cells {
		data[i] = types.Datum{VarCharValue: aws.String(c)}
	}
	return types.Row{Data: data}
}

func TestFormatResults(t *testing.T) {
	rows := []types.Row{
		row("region", "revenue"),
		row("EMEA", "1200.50"),
		row("APAC", "980.00"),
	}
	stats := &types.QueryExecutionStatistics{
		DataScannedInBytes:         aws.Int64(5 * 1024 * 1024),
		TotalExecutionTimeInMillis: aws.Int64(1234),
	}

	payload := FormatResults("SELECT region, revenue FROM sales", rows, stats)

	assert.Equal(t, []string{"region", "revenue"}, payload.Columns)
	assert.Equal(t, 2, payload.RowCount)
	require.Len(t, payload.Rows, 2)
	for _, r := range payload.Rows {
		assert.Len(t, r, len(payload.Columns))
	}
	assert.Equal(t, 5.0, payload.DataScannedMB)
	assert.Equal(t, int64(1234), payload.ExecutionTimeMS)
}

func TestFormatResultsEmpty(t *testing.T) {
	payload := FormatResults("SELECT 1", nil, nil)

	assert.Equal(t, 0, payload.RowCount)
	assert.Empty(t, payload.Columns)
	assert.Empty(t, payload.Rows)
	assert.NotNil(t, payload.Columns)
	assert.NotNil(t, payload.Rows)
}

func TestFormatResultsNullCells(t *testing.T) {
	rows := []types.Row{
		row("region", "revenue"),
		{Data: []types.Datum{{VarCharValue: aws.String("EMEA")}, {}}},
	}

	payload := FormatResults("SELECT region, revenue FROM sales", rows, nil)

	require.Len(t, payload.Rows, 1)
	assert.Equal(t, []string{"EMEA", ""}, payload.Rows[0])
}

func TestFormatResultsScanRounding(t *testing.T) {
	stats := &types.QueryExecutionStatistics{
		DataScannedInBytes: aws.Int64(1500000), // 1.43051... MB
	}
	payload := FormatResults("SELECT 1", nil, stats)
	assert.Equal(t, 1.431, payload.DataScannedMB)
}
