package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bilisum/internal/jobs"
)

type statusJSON struct {
	TaskID   string     `json:"task_id"`
	State    jobs.State `json:"state"`
	Reported string     `json:"reported,omitempty"`
	Summary  string     `json:"summary,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Query the current state of a job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			handle := jobs.Handle{JobID: strings.TrimSpace(args[0])}
			resp, err := client.Status(cmd.Context(), handle.JobID)
			if err != nil {
				return fmt.Errorf("query status: %w", err)
			}
			status := jobs.StatusFromResponse(resp)

			if asJSON {
				return writeJSON(cmd, statusJSON{
					TaskID:   handle.JobID,
					State:    status.State,
					Reported: status.Reported,
					Summary:  status.Summary(),
					Error:    status.Error,
				})
			}

			out := cmd.OutOrStdout()
			for _, line := range statusLines(handle, status, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			if summary := status.Summary(); summary != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, strings.TrimRight(summary, "\n"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
