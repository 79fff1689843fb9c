package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "status <project-uuid>",
		Short: "Show the current job status of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			query := client.GetStatus
			if export {
				query = client.GetExportStatus
			}
			details, err := query(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", details.Status)
			if details.Progress != nil {
				fmt.Fprintf(out, "Progress: %.0f%%\n", *details.Progress)
			}
			if details.Details != "" {
				fmt.Fprintf(out, "Details: %s\n", details.Details)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "Query the export job instead of the edit job")
	return cmd
}
