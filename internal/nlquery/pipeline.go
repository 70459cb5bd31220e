package nlquery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dataheal/dataheal/internal/metrics"
	"github.com/dataheal/dataheal/internal/models"
)

// ContextFetcher provides schema grounding for generation. It never fails;
// unreachable catalogs degrade to a sentinel value.
type ContextFetcher interface {
	FetchContext(ctx context.Context, database string) string
}

// Pipeline composes schema grounding, SQL generation, safety validation,
// and Athena execution into one request/response operation.
type Pipeline struct {
	catalog   ContextFetcher
	model     TextGenerator
	executor  *Executor
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewPipeline creates an NL query pipeline.
func NewPipeline(catalog ContextFetcher, model TextGenerator, executor *Executor, collector *metrics.Collector, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		catalog:   catalog,
		model:     model,
		executor:  executor,
		collector: collector,
		logger:    logger,
	}
}

// Answer runs the full pipeline for one question. Exactly one of the two
// return values is non-nil. Every terminal outcome is a structured value;
// nothing here panics or aborts the process. A single pass per request, no
// automatic retries.
func (p *Pipeline) Answer(ctx context.Context, question, database string) (*models.ResultPayload, *models.QueryError) {
	p.logger.Info("nl query received", "question", question, "database", database)

	// 1. Schema context (fail-soft, never aborts the pipeline)
	start := time.Now()
	schemaContext := p.catalog.FetchContext(ctx, database)
	p.collector.RecordTiming(metrics.OpCatalogFetch, time.Since(start))

	// 2. Generate SQL
	start = time.Now()
	sql, err := GenerateSQL(ctx, p.model, question, database, schemaContext)
	p.collector.RecordTiming(metrics.OpGenerate, time.Since(start))
	if err != nil {
		p.logger.Error("sql generation failed", "error", err)
		return nil, &models.QueryError{Message: fmt.Sprintf("SQL generation failed: %v", err)}
	}
	p.logger.Info("generated sql", "sql", sql)

	// 3. Safety validation; rejected queries never reach execution
	if verdict := Validate(sql); !verdict.Safe {
		p.logger.Warn("query blocked", "reason", verdict.Reason, "sql", sql)
		return nil, &models.QueryError{
			Message: fmt.Sprintf("Query blocked: %s", verdict.Reason),
			SQL:     sql,
		}
	}

	// 4. Execute on Athena and poll to a terminal state
	start = time.Now()
	queryID, err := p.executor.Submit(ctx, sql, database)
	if err != nil {
		p.collector.RecordTiming(metrics.OpAthenaQuery, time.Since(start))
		p.logger.Error("query submission failed", "error", err)
		return nil, &models.QueryError{Message: fmt.Sprintf("Athena submission failed: %v", err), SQL: sql}
	}

	state, stats, err := p.executor.Poll(ctx, queryID)
	p.collector.RecordTiming(metrics.OpAthenaQuery, time.Since(start))
	if err != nil {
		p.logger.Error("query polling failed", "query_id", queryID, "error", err)
		return nil, &models.QueryError{Message: fmt.Sprintf("Athena polling failed: %v", err), SQL: sql, QueryID: queryID}
	}
	if state != StateSucceeded {
		p.logger.Error("query did not succeed", "state", state, "query_id", queryID)
		return nil, &models.QueryError{Message: fmt.Sprintf("Athena query %s", state), SQL: sql, QueryID: queryID}
	}

	// 5. Fetch and format results
	rows, err := p.executor.FetchRows(ctx, queryID)
	if err != nil {
		p.logger.Error("result fetch failed", "query_id", queryID, "error", err)
		return nil, &models.QueryError{Message: fmt.Sprintf("Result fetch failed: %v", err), SQL: sql, QueryID: queryID}
	}

	payload := FormatResults(sql, rows, stats)
	p.logger.Info("query complete",
		"query_id", queryID,
		"rows", payload.RowCount,
		"scanned_mb", payload.DataScannedMB,
	)
	return payload, nil
}
