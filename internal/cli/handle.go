package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dataheal/dataheal/internal/action"
	"github.com/spf13/cobra"
)

var handleEventPath string

var handleCmd = &cobra.Command{
	Use:   "handle",
	Short: "Process one agent action-group event",
	Long: `Handle decodes a Bedrock agent action-group invocation event, runs the
requested function through the query pipeline, and prints the response
envelope the agent runtime expects. Useful for exercising the action
handler locally with captured events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(handleEventPath)
		if err != nil {
			return err
		}
		event, err := action.ParseEvent(data)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}

		resp, err := rt.handler.Handle(cmd.Context(), event)
		if err != nil {
			return err
		}

		encoded, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	handleCmd.Flags().StringVar(&handleEventPath, "event", "-", "action-group event JSON file, or - for stdin")
}
