package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/olebedev/when/rules/ru"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

var (
	errInvalidVisitDate = errors.New("invalid visit date")
	errVisitIncomplete  = errors.New("--client, --property and --plot are required without a terminal")
	errNoOptions        = errors.New("nothing to choose from, run `fieldcrm warm` while online first")
)

var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(ru.All...)
	w.Add(common.All...)
	return w
}

// parseVisitDate accepts an ISO date or a phrase like "tomorrow" or
// "next friday" relative to now. Empty input means today.
func parseVisitDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now.Format(time.DateOnly), nil
	}
	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return t.Format(time.DateOnly), nil
	}

	r, err := dateParser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidVisitDate, err)
	}
	if r == nil {
		return "", fmt.Errorf("%w: %q", errInvalidVisitDate, input)
	}
	return r.Time.Format(time.DateOnly), nil
}

// visitInput holds the values bound to the visit form and flags.
type visitInput struct {
	ClientID   int64
	PropertyID int64
	PlotID     int64
	Date       string
	Notes      string
}

func (v visitInput) complete() bool {
	return v.ClientID != 0 && v.PropertyID != 0 && v.PlotID != 0
}

func (v visitInput) payload(now time.Time) (json.RawMessage, error) {
	date, err := parseVisitDate(v.Date, now)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"date":        date,
		"client_id":   v.ClientID,
		"property_id": v.PropertyID,
		"plot_id":     v.PlotID,
	}
	if notes := strings.TrimSpace(v.Notes); notes != "" {
		body["notes"] = notes
	}
	return json.Marshal(body)
}

// recordOptions turns records into select options. When parentField is set
// only children of parentID are kept.
func recordOptions(records []models.Record, parentField string, parentID int64) []huh.Option[int64] {
	opts := make([]huh.Option[int64], 0, len(records))
	for _, r := range records {
		fields, err := r.Fields()
		if err != nil {
			continue
		}
		if parentField != "" {
			parent, _ := fields[parentField].(float64)
			if int64(parent) != parentID {
				continue
			}
		}

		label := fmt.Sprintf("#%d", r.ID)
		if name, _ := fields["name"].(string); name != "" {
			label = name
		}
		if r.Pending() {
			label += " (offline)"
		}
		opts = append(opts, huh.NewOption(label, r.ID))
	}
	return opts
}

func newVisitCmd(opts *rootOptions) *cobra.Command {
	visit := &cobra.Command{
		Use:     "visit",
		Short:   "Field visits",
		GroupID: groupData,
	}

	var input visitInput
	create := &cobra.Command{
		Use:   "new",
		Short: "Record a field visit, queued when the remote API is unreachable",
		Example: `  fieldcrm visit new
  fieldcrm visit new --client 7 --property 12 --plot 31 --date tomorrow --notes "rust on north plot"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := openApp(cmd, opts, "fieldcrm-visit", false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			app.Monitor().Check(ctx)
			records := app.Services().RecordService

			if !input.complete() {
				if !isInteractive() {
					return errVisitIncomplete
				}
				if err = runVisitForm(ctx, records, &input); err != nil {
					return err
				}
			}

			payload, err := input.payload(time.Now())
			if err != nil {
				return err
			}
			result, err := records.Create(ctx, models.CollectionVisits, payload)
			if err != nil {
				return err
			}

			if result.Queued {
				fmt.Fprintf(cmd.OutOrStdout(), "Visit saved offline as #%d, it will be sent on reconnect\n", result.Record.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visit #%d created\n", result.Record.ID)
			return nil
		},
	}

	create.Flags().Int64Var(&input.ClientID, "client", 0, "client id")
	create.Flags().Int64Var(&input.PropertyID, "property", 0, "property id")
	create.Flags().Int64Var(&input.PlotID, "plot", 0, "plot id")
	create.Flags().StringVar(&input.Date, "date", "", `visit date: 2026-05-01, "today", "next friday"`)
	create.Flags().StringVar(&input.Notes, "notes", "", "visit notes")

	visit.AddCommand(create)
	return visit
}

// runVisitForm asks for the fields missing from input. Choices come from the
// remote API when online and from the local cache otherwise.
func runVisitForm(ctx context.Context, records service.RecordService, input *visitInput) error {
	load := func(collection string) ([]models.Record, error) {
		list, err := records.List(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", collection, err)
		}
		return list.Records, nil
	}

	clients, err := load(models.CollectionClients)
	if err != nil {
		return err
	}
	properties, err := load(models.CollectionProperties)
	if err != nil {
		return err
	}
	plots, err := load(models.CollectionPlots)
	if err != nil {
		return err
	}

	clientOptions := recordOptions(clients, "", 0)
	if len(clientOptions) == 0 {
		return errNoOptions
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Client").
				Options(clientOptions...).
				Value(&input.ClientID),
			huh.NewSelect[int64]().
				Title("Property").
				OptionsFunc(func() []huh.Option[int64] {
					return recordOptions(properties, "client_id", input.ClientID)
				}, &input.ClientID).
				Value(&input.PropertyID),
			huh.NewSelect[int64]().
				Title("Plot").
				OptionsFunc(func() []huh.Option[int64] {
					return recordOptions(plots, "property_id", input.PropertyID)
				}, &input.PropertyID).
				Value(&input.PlotID),
		).Title("New visit"),
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("today").
				Value(&input.Date).
				Validate(func(s string) error {
					_, err := parseVisitDate(s, time.Now())
					return err
				}),
			huh.NewText().
				Title("Notes").
				Placeholder("Optional observations...").
				Lines(4).
				Value(&input.Notes),
		),
	)

	return form.RunWithContext(ctx)
}
