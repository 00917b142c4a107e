// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MKhiriev/field-crm/internal/client"
	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

// defaultTUILogFile keeps log output off the terminal owned by the UI.
const defaultTUILogFile = "fieldcrm.log"

const (
	groupCore   = "core"
	groupData   = "data"
	groupSystem = "system"
)

type rootOptions struct {
	buildInfo models.AppBuildInfo
}

func newRootCmd(buildInfo models.AppBuildInfo) *cobra.Command {
	opts := &rootOptions{buildInfo: buildInfo}

	root := &cobra.Command{
		Use:   "fieldcrm",
		Short: "Offline-first field CRM client",
		Long: `fieldcrm - offline-first client of the agribusiness field CRM.

Reads and writes go to the remote API while it is reachable and to the local
store while it is not. Offline writes are queued and replayed on reconnect.
Run without a command to open the terminal UI, or headless when stdout is not
a terminal.`,
		Version:       buildInfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isInteractive() {
				return runTUI(cmd, opts)
			}
			return runServe(cmd, opts)
		},
	}

	config.RegisterFlags(root.PersistentFlags())
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Core Commands:"},
		&cobra.Group{ID: groupData, Title: "Data Commands:"},
		&cobra.Group{ID: groupSystem, Title: "System Commands:"},
	)
	root.SetHelpCommandGroupID(groupSystem)
	root.SetCompletionCommandGroupID(groupSystem)

	root.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newSyncCmd(opts),
		newWarmCmd(opts),
		newStatusCmd(opts),
		newQueueCmd(opts),
		newVisitCmd(opts),
		newVersionCmd(opts),
	)

	return root
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// openApp loads the configuration from the command flags and opens the
// local store. The caller closes the returned app.
func openApp(cmd *cobra.Command, opts *rootOptions, role string, interactive bool) (*client.App, *logger.Logger, error) {
	cfg, err := config.GetClientConfig(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if interactive && cfg.Log.Path == "" {
		cfg.Log.Path = defaultTUILogFile
	}

	log := logger.NewClientLogger(role, cfg.Log.Path, cfg.Log.Level)
	app, err := client.NewApp(cmd.Context(), cfg, opts.buildInfo, log)
	if err != nil {
		log.Err(err).Str("func", "openApp").Msg("init client app error")
		return nil, nil, err
	}
	return app, log, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
