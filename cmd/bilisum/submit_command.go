package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bilisum/internal/jobs"
)

type submitJSON struct {
	TaskID string `json:"task_id"`
	Source string `json:"source"`
	Preset string `json:"preset,omitempty"`
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var presetFlag string
	var prompt string
	var skipDownload bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "submit SOURCE",
		Short: "Submit a job and print its task id without waiting",
		Long: "Submit a job for SOURCE (a BV id, video URL, or backend-local file path)\n" +
			"and print the task id. Use `bilisum watch TASK_ID` to follow it later.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			source, err := ctx.presetSource()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("skip-download") {
				skipDownload = cfg.Backend.SkipDownload
			}

			req := jobs.Request{
				Source:            strings.TrimSpace(args[0]),
				CustomInstruction: prompt,
				SkipDownload:      skipDownload,
			}
			if req.Source != "" {
				preset, err := resolvePreset(source.Fetch(cmd.Context()), presetFlag)
				if err != nil {
					return err
				}
				req.PresetKey = preset
			}

			handle, err := jobs.NewSubmitter(client, logger).Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, submitJSON{TaskID: handle.JobID, Source: req.Source, Preset: req.PresetKey})
			}
			fmt.Fprintln(cmd.OutOrStdout(), handle.JobID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&presetFlag, "preset", "p", "", "Preset key (default: backend default)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom instruction that overrides the preset prompt")
	cmd.Flags().BoolVar(&skipDownload, "skip-download", false, "Reuse a file the backend already downloaded")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
