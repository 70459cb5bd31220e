// Package catalog fetches schema context from the Glue Data Catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
)

// Sentinel values returned instead of a schema listing. Generation proceeds
// in degraded mode on either.
const (
	SchemaUnavailable = "Schema unavailable - generate best-effort SQL"
	NoTablesFound     = "No tables found in catalog"
)

// TablesAPI is the subset of the Glue client the fetcher uses.
type TablesAPI interface {
	GetTables(ctx context.Context, params *glue.GetTablesInput, optFns ...func(*glue.Options)) (*glue.GetTablesOutput, error)
}

// Fetcher retrieves a bounded schema summary for SQL generation grounding.
type Fetcher struct {
	client    TablesAPI
	maxTables int
	logger    *slog.Logger
}

// NewFetcher creates a catalog fetcher.
func NewFetcher(client TablesAPI, maxTables int, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:    client,
		maxTables: maxTables,
		logger:    logger,
	}
}

// FetchContext returns a schema summary for the database, capped to the
// first maxTables tables. Schema context is an optimization, not a
// correctness requirement: any retrieval failure degrades to a sentinel
// instead of propagating.
func (f *Fetcher) FetchContext(ctx context.Context, database string) string {
	out, err := f.client.GetTables(ctx, &glue.GetTablesInput{
		DatabaseName: aws.String(database),
	})
	if err != nil {
		f.logger.Warn("could not fetch schema", "database", database, "error", err)
		return SchemaUnavailable
	}

	tables := out.TableList
	if len(tables) > f.maxTables {
		tables = tables[:f.maxTables]
	}

	lines := make([]string, 0, len(tables))
	for _, table := range tables {
		cols := make([]string, 0)
		if table.StorageDescriptor != nil {
			for _, c := range table.StorageDescriptor.Columns {
				cols = append(cols, fmt.Sprintf("%s (%s)", aws.ToString(c.Name), aws.ToString(c.Type)))
			}
		}
		lines = append(lines, fmt.Sprintf("  TABLE %s: %s", aws.ToString(table.Name), strings.Join(cols, ", ")))
	}

	if len(lines) == 0 {
		return NoTablesFound
	}
	return strings.Join(lines, "\n")
}
