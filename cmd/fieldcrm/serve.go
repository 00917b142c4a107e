package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/field-crm/internal/tui"
)

var errNotATerminal = errors.New("the terminal UI needs an interactive terminal")

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run"},
		Short:   "Run the local API, offline shell and background sync without a UI",
		GroupID: groupCore,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Short:   "Open the terminal UI",
		GroupID: groupCore,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isInteractive() {
				return errNotATerminal
			}
			return runTUI(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	app, log, err := openApp(cmd, opts, "fieldcrm-serve", false)
	if err != nil {
		return err
	}
	defer app.Close()

	log.Info().
		Str("version", opts.buildInfo.Version()).
		Str("commit", opts.buildInfo.Commit()).
		Msg("starting field crm client")

	if err = app.Serve(cmd.Context()); err != nil {
		log.Err(err).Str("func", "runServe").Msg("client serve error")
		return err
	}
	return nil
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	app, log, err := openApp(cmd, opts, "fieldcrm-tui", true)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	stop := app.StartWorkers(ctx)
	defer stop()
	go app.Warm(ctx)

	ui, err := tui.New(app.Services(), app.BuildInfo(), log)
	if err != nil {
		return err
	}
	return ui.Run(ctx)
}
