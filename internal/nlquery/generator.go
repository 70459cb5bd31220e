package nlquery

import (
	"context"
	"fmt"
)

// TextGenerator is the single-shot completion capability used for SQL
// generation.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const sqlPrompt = `Generate a single valid Athena SQL (Presto dialect) query to answer this question.

Database: %s
Schema:
%s

Question: %s

Rules:
- Return ONLY the raw SQL query, no explanation, no markdown backticks
- Use Athena/Presto syntax
- Add LIMIT 1000 unless the question is an aggregation
- Handle NULL values with COALESCE where appropriate
- Use date_trunc or date_format for date grouping questions
`

// GenerateSQL turns a question plus schema context into one candidate SQL
// statement. The output is untrusted until validated; a single bad
// generation is not retried, the validator is the safety net.
func GenerateSQL(ctx context.Context, model TextGenerator, question, database, schemaContext string) (string, error) {
	prompt := fmt.Sprintf(sqlPrompt, database, schemaContext, question)

	sql, err := model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	return sql, nil
}
