package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print build version, date and commit",
		GroupID: groupSystem,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return printJSON(cmd.OutOrStdout(), opts.buildInfo)
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.buildInfo.String())
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print build info as JSON")
	return cmd
}
