package nlquery

import (
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/dataheal/dataheal/internal/models"
)

// FormatResults normalizes a retrieved Athena result set into a bounded
// payload. The first row is the header defining column names; every
// subsequent row is data, cells coerced to display strings (empty string
// when absent). A zero-row result set yields an explicitly empty payload.
func FormatResults(sql string, rows []types.Row, stats *types.QueryExecutionStatistics) *models.ResultPayload {
	payload := &models.ResultPayload{
		SQLGenerated: sql,
		Columns:      []string{},
		Rows:         [][]string{},
	}

	if stats != nil {
		mb := float64(aws.ToInt64(stats.DataScannedInBytes)) / (1024 * 1024)
		payload.DataScannedMB = math.Round(mb*1000) / 1000
		payload.ExecutionTimeMS = aws.ToInt64(stats.TotalExecutionTimeInMillis)
	}

	if len(rows) == 0 {
		return payload
	}

	payload.Columns = datumStrings(rows[0].Data)
	for _, row := range rows[1:] {
		payload.Rows = append(payload.Rows, datumStrings(row.Data))
	}
	payload.RowCount = len(payload.Rows)

	return payload
}

func datumStrings(data []types.Datum) []string {
	out := make([]string, len(data))
	for i, d := range data {
		out[i] = aws.ToString(d.VarCharValue)
	}
	return out
}
