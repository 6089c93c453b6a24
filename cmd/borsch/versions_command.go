package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"borsch/internal/playground"
)

type versionView struct {
	Version string `json:"version"`
	Latest  bool   `json:"latest"`
	Default bool   `json:"configured"`
}

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List language versions supported by the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, _, err := ctx.newClient()
			if err != nil {
				return err
			}
			versions, err := client.ListLanguageVersions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list language versions: %s", playground.UserMessage(err))
			}

			views := make([]versionView, len(versions))
			for i, v := range versions {
				views[i] = versionView{
					Version: v,
					Latest:  i == 0,
					Default: v == cfg.Execution.LanguageVersion,
				}
			}

			if jsonOut {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "The service advertised no language versions")
				return nil
			}
			rows := make([][]string, len(views))
			for i, v := range views {
				rows[i] = []string{strconv.Itoa(i + 1), v.Version, yesNo(v.Latest), yesNo(v.Default)}
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Version", "Latest", "Configured"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
