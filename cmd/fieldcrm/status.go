package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/field-crm/models"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show connectivity, queue length and the last sync",
		GroupID: groupData,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := openApp(cmd, opts, "fieldcrm-status", false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			app.Monitor().Check(ctx)
			status := app.Services().StatusService.Status(ctx)

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd, status)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the status as JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, s models.StatusResponse) {
	out := cmd.OutOrStdout()

	conn := "offline"
	if s.Connectivity.Connected {
		conn = "online"
	}
	if s.Connectivity.Source != "" {
		conn += " (" + s.Connectivity.Source + ")"
	}
	fmt.Fprintf(out, "Remote API:     %s\n", conn)
	fmt.Fprintf(out, "Sync:           %s\n", s.Sync)
	fmt.Fprintf(out, "Pending writes: %d\n", s.PendingWrites)
	fmt.Fprintf(out, "Schema version: %d\n", s.SchemaVersion)

	storage := "healthy"
	if !s.StorageHealthy {
		storage = "unavailable"
	}
	fmt.Fprintf(out, "Local store:    %s\n", storage)

	if s.LastSync != nil {
		fmt.Fprintf(out, "Last sync:      %s (%s), replayed %d, failed %d\n",
			s.LastSync.EndedAt.Local().Format(time.DateTime), s.LastSync.Trigger, s.LastSync.Replayed, s.LastSync.Failed)
	}
	if s.TokenExpiresAt != nil {
		fmt.Fprintf(out, "Token expires:  %s\n", s.TokenExpiresAt.Local().Format(time.DateTime))
	}
}
