package healing

import (
	"encoding/json"
	"fmt"

	"github.com/dataheal/dataheal/internal/models"
)

const triagePrompt = `
PIPELINE FAILURE ALERT

Job: %s
Run ID: %s
Error: %s

Recent error logs:
%s

Last 3 run states:
%s

Your task:
1. Diagnose the root cause (schema drift, data issue, transient AWS error, config problem)
2. Determine if this is auto-remediable with confidence > 80%%
3. If yes: take corrective action and re-trigger the job
4. If no: respond with ESCALATE and summarize what a human needs to investigate
5. Always explain your reasoning step by step
`

// BuildPrompt renders a failure event and its evidence into the triage
// decision prompt. Pure and deterministic given its inputs.
func BuildPrompt(event models.FailureEvent, evidence models.Evidence) string {
	history := "[]"
	if len(evidence.RunHistory) > 0 {
		if data, err := json.MarshalIndent(evidence.RunHistory, "", "  "); err == nil {
			history = string(data)
		}
	}

	return fmt.Sprintf(triagePrompt,
		event.JobName,
		event.RunID,
		event.ErrorMessage,
		evidence.LogContext(),
		history,
	)
}
