package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// probePrompts are smoke checks covering the agent's capabilities: run
// status, data querying through the action group, failure reasoning for
// schema drift and data-quality gates, and one off-topic question the
// guardrail should deflect.
var probePrompts = []string{
	"What is the status of the latest sales-transform job run?",
	"How many rows are in the sales table?",
	"The sales-transform job failed with 'AnalysisException: cannot resolve column amount_usd'. Diagnose the failure.",
	"The nightly load failed its data quality check: 40% of order_id values are null. What should we do?",
	"Write me a poem about data pipelines.",
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Smoke-test the Bedrock agent with canned prompts",
	Long: `Probe sends a fixed set of prompts to the configured Bedrock agent under
a fresh session and reports, for each, the number of orchestration steps
and an excerpt of the answer. A quick end-to-end check that the agent,
its alias, and its action groups are wired up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}

		session := "probe-" + uuid.NewString()[:8]
		fmt.Println(hintStyle.Render("session " + session))

		for n, prompt := range probePrompts {
			fmt.Printf("\n%s\n", headerStyle.Render(fmt.Sprintf("[%d/%d] %s", n+1, len(probePrompts), prompt)))

			decision := rt.invoker.Invoke(cmd.Context(), prompt, session)
			excerpt := decision.Text
			if len(excerpt) > 500 {
				excerpt = excerpt[:500] + "..."
			}
			fmt.Println(excerpt)

			line := fmt.Sprintf("%d orchestration steps", len(decision.Traces))
			// Escalation is a valid answer for the failure prompts; only
			// flag it, don't fail the probe run.
			if decision.Escalate {
				fmt.Println(errorStyle.Render(line + ", escalated"))
			} else {
				fmt.Println(successStyle.Render(line))
			}
		}
		return nil
	},
}
