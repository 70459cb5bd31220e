// Package nlquery implements the natural-language to SQL query pipeline:
// schema grounding, generation, safety validation, Athena execution, and
// result formatting.
package nlquery

import (
	"fmt"
	"strings"
)

// blockedKeywords are statements that must never reach execution through
// this pipeline.
var blockedKeywords = []string{"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "TRUNCATE", "CREATE"}

// Verdict classifies a generated query as permitted or rejected. An unsafe
// verdict always carries a non-empty reason.
type Verdict struct {
	Safe   bool
	Reason string
}

// Validate rejects any query containing a blocked keyword or not beginning
// with SELECT/WITH. The keyword check is a conservative substring match,
// not tokenized: keywords inside string literals or identifiers also
// reject. Fails closed; false positives are acceptable, false negatives
// are not.
func Validate(query string) Verdict {
	upper := strings.ToUpper(query)
	for _, kw := range blockedKeywords {
		if strings.Contains(upper, kw) {
			return Verdict{Safe: false, Reason: fmt.Sprintf("Blocked keyword detected: %s", kw)}
		}
	}

	trimmed := strings.TrimSpace(upper)
	if !strings.HasPrefix(trimmed, "SELECT") && !strings.HasPrefix(trimmed, "WITH") {
		return Verdict{Safe: false, Reason: "Only SELECT / WITH queries are permitted"}
	}

	return Verdict{Safe: true}
}
