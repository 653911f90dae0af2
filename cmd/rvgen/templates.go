package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/rvforms/internal/core/templates"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available template types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tTEMPLATE SHEET\tFIELDS")
		for _, info := range templates.Default().Infos() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Variant, info.SheetMatch, strings.Join(info.Fields, ", "))
		}
		return tw.Flush()
	},
}
