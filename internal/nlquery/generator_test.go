package nlquery

import (
	"context"
	"strings"
	"testing"
)

type capturingGenerator struct {
	prompt string
}

func (c *capturingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	c.prompt = prompt
	return "SELECT 1", nil
}

func TestGenerateSQLPrompt(t *testing.T) {
	gen := &capturingGenerator{}

	sql, err := GenerateSQL(context.Background(), gen, "total revenue by region", "data_warehouse", "  TABLE sales: region (string)")
	if err != nil {
		t.Fatalf("GenerateSQL: %v", err)
	}
	if sql != "SELECT 1" {
		t.Errorf("sql = %q", sql)
	}

	for _, want := range []string{
		"Database: data_warehouse",
		"TABLE sales: region (string)",
		"Question: total revenue by region",
		"ONLY the raw SQL query",
		"LIMIT 1000",
		"COALESCE",
		"date_trunc",
	} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
