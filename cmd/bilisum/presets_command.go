package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the processing presets offered by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := ctx.presetSource()
			if err != nil {
				return err
			}
			selection := source.Fetch(cmd.Context())

			if asJSON {
				return writeJSON(cmd, selection)
			}

			rows := make([][]string, 0, len(selection.Presets))
			for i, p := range selection.Presets {
				rows = append(rows, []string{strconv.Itoa(i + 1), p.Key, p.Label, yesNo(p.Key == selection.Default)})
			}
			caption := ""
			if selection.Degraded {
				caption = "backend unavailable; showing built-in presets"
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Key", "Label", "Default"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				caption,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
