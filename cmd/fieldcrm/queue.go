package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/field-crm/models"
)

func newQueueCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queue",
		Short:   "List writes waiting to be replayed",
		GroupID: groupData,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := openApp(cmd, opts, "fieldcrm-queue", false)
			if err != nil {
				return err
			}
			defer app.Close()

			writes, err := app.Services().QueueService.List(cmd.Context())
			if err != nil {
				return err
			}
			if writes == nil {
				writes = []models.QueuedWrite{}
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(cmd.OutOrStdout(), models.QueueResponse{Writes: writes, Length: len(writes)})
			}
			if len(writes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderQueueTable(writes))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the queue as JSON")
	return cmd
}

func renderQueueTable(writes []models.QueuedWrite) string {
	rows := make([][]string, 0, len(writes))
	for _, w := range writes {
		record := "-"
		if w.RecordID != 0 {
			record = strconv.FormatInt(w.RecordID, 10)
		}
		next := "now"
		if w.NextAttemptAt != nil && w.NextAttemptAt.After(time.Now()) {
			next = w.NextAttemptAt.Local().Format(time.TimeOnly)
		}
		rows = append(rows, []string{
			strconv.FormatInt(w.LocalID, 10),
			string(w.Operation),
			w.Collection,
			record,
			strconv.Itoa(w.Attempts),
			next,
			w.LastError,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "OP", "COLLECTION", "RECORD", "ATTEMPTS", "NEXT", "LAST ERROR").
		Rows(rows...).
		String()
}
