package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"borsch/internal/highlight"
)

func newHighlightCommand() *cobra.Command {
	var colorMode string
	var listRules bool

	cmd := &cobra.Command{
		Use:         "highlight [file|-]",
		Short:       "Print Borsch source with syntax colouring",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := highlight.Borsch()
			out := cmd.OutOrStdout()

			if listRules {
				rows := make([][]string, 0, len(rules.Rules()))
				for i, rule := range rules.Rules() {
					rows = append(rows, []string{fmt.Sprint(i + 1), rule.Name, truncate(rule.Pattern.String(), 48)})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "Rule", "Pattern"}, rows, []columnAlignment{alignRight}))
				return nil
			}

			var colorize bool
			switch strings.ToLower(strings.TrimSpace(colorMode)) {
			case "", "auto":
				colorize = shouldColorize(out)
			case "always":
				colorize = true
			case "never":
				colorize = false
			default:
				return fmt.Errorf("invalid --color %q (want auto, always, or never)", colorMode)
			}

			source, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, rules.Render(source, colorize))
			return err
		},
	}

	cmd.Flags().StringVar(&colorMode, "color", "auto", "Colour output: auto, always, never")
	cmd.Flags().BoolVar(&listRules, "rules", false, "List highlighting rules in evaluation order")
	return cmd
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
