package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dataheal/dataheal/internal/models"
	"github.com/spf13/cobra"
)

var healEventPath string

var healCmd = &cobra.Command{
	Use:   "heal",
	Short: "Triage one pipeline failure event",
	Long: `Heal reads a Glue job failure event (EventBridge format), collects error
logs and run history as evidence, asks the Bedrock agent for a diagnosis,
and routes the outcome: metrics always, an SNS escalation when the agent
defers to a human.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(healEventPath)
		if err != nil {
			return err
		}
		event, err := models.ParseFailureEvent(data)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}

		outcome := rt.healer.Heal(cmd.Context(), event)
		logger.Debug("pipeline timings", "snapshot", rt.collector.Snapshot())

		encoded, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("encode outcome: %w", err)
		}
		fmt.Println(string(encoded))

		if outcome.Resolved {
			fmt.Println(successStyle.Render(fmt.Sprintf("Resolved: %s (%d agent steps)", outcome.JobName, outcome.AgentSteps)))
		} else {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Escalated: %s (%d agent steps)", outcome.JobName, outcome.AgentSteps)))
		}
		return nil
	},
}

func init() {
	healCmd.Flags().StringVar(&healEventPath, "event", "-", "failure event JSON file, or - for stdin")
}
