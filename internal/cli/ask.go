package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dataheal/dataheal/internal/models"
	"github.com/spf13/cobra"
)

var (
	askDatabase string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a natural-language question against the warehouse",
	Long: `Ask runs the full query pipeline: it grounds the question in the Glue
catalog schema, generates SQL, gates it through the safety validator, and
executes it on Athena. Unsafe or failed queries are reported as structured
errors rather than executed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		database := askDatabase
		if database == "" {
			database = cfg.DefaultDatabase
		}

		payload, qerr := rt.queries.Answer(cmd.Context(), question, database)
		logger.Debug("pipeline timings", "snapshot", rt.collector.Snapshot())

		if askJSON {
			var out any = payload
			if qerr != nil {
				out = qerr
			}
			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Println(string(encoded))
			if qerr != nil {
				return fmt.Errorf("query did not complete")
			}
			return nil
		}

		if qerr != nil {
			fmt.Println(errorStyle.Render(qerr.Message))
			if qerr.SQL != "" {
				fmt.Println(hintStyle.Render("SQL: " + qerr.SQL))
			}
			if qerr.QueryID != "" {
				fmt.Println(hintStyle.Render("Query ID: " + qerr.QueryID))
			}
			return fmt.Errorf("query did not complete")
		}

		renderPayload(payload)
		return nil
	},
}

func renderPayload(payload *models.ResultPayload) {
	fmt.Println(hintStyle.Render(payload.SQLGenerated))
	fmt.Println()

	if len(payload.Columns) > 0 {
		fmt.Println(headerStyle.Render(strings.Join(payload.Columns, " | ")))
	}
	for _, row := range payload.Rows {
		fmt.Println(strings.Join(row, " | "))
	}

	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf(
		"%d rows, %.3f MB scanned, %d ms",
		payload.RowCount, payload.DataScannedMB, payload.ExecutionTimeMS,
	)))
}

func init() {
	askCmd.Flags().StringVar(&askDatabase, "database", "", "Glue database to query (defaults to the configured database)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the raw result payload as JSON")
}
