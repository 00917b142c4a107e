package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/field-crm/models"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   "Replay queued writes and refresh cached collections once",
		GroupID: groupCore,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := openApp(cmd, opts, "fieldcrm-sync", false)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Sync(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printSyncResult(cmd, result)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

func printSyncResult(cmd *cobra.Command, r models.SyncResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Replayed:  %d\n", r.Replayed)
	fmt.Fprintf(out, "Failed:    %d\n", r.Failed)
	fmt.Fprintf(out, "Deferred:  %d\n", r.Deferred)
	fmt.Fprintf(out, "Remaining: %d\n", r.RemainingInQueue)
	if r.DrainInterruption != "" {
		fmt.Fprintf(out, "Stopped:   %s\n", r.DrainInterruption)
	}
	if len(r.Refreshed) > 0 {
		fmt.Fprintf(out, "Refreshed: %s\n", strings.Join(r.Refreshed, ", "))
	}
	if len(r.RefreshFailed) > 0 {
		fmt.Fprintf(out, "Not refreshed: %s\n", strings.Join(r.RefreshFailed, ", "))
	}
	fmt.Fprintf(out, "Took:      %s\n", r.Duration().Round(time.Millisecond))
}

func newWarmCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "warm",
		Short:   "Preload reference collections into the local store",
		GroupID: groupCore,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := openApp(cmd, opts, "fieldcrm-warm", false)
			if err != nil {
				return err
			}
			defer app.Close()

			report := app.Warm(cmd.Context())
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			for _, name := range slices.Sorted(maps.Keys(report.Warmed)) {
				fmt.Fprintf(out, "%-14s %d records\n", name, report.Warmed[name])
			}
			for _, name := range slices.Sorted(maps.Keys(report.Failed)) {
				fmt.Fprintf(out, "%-14s failed: %s\n", name, report.Failed[name])
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the report as JSON")
	return cmd
}
