package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/cli"
	"github.com/spf13/cobra"
)

func aliasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Show the header alias table",
		Long: `Print the merged header alias table: the built-in aliases overlaid with the
entries of --mapping (or the configured mapping file). Headers not listed
here pass through lower-cased.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd, map[string]string{"mapping": "mapping"})
		},
		RunE: runAliases,
	}

	cmd.Flags().String("mapping", "", "JSON alias file extending the built-in header aliases")

	return cmd
}

func runAliases(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	aliases, err := loadAliases(cfg)
	if err != nil {
		return err
	}

	entries := aliases.Entries()
	width := 0
	for _, e := range entries {
		width = max(width, len([]rune(e[0])))
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle("Header Aliases"))
	b.WriteString("\n")
	for _, e := range entries {
		raw := e[0] + strings.Repeat(" ", width-len([]rune(e[0])))
		fmt.Fprintf(&b, "  %s  → %s\n", raw, cli.BoldStyle.Render(e[1]))
	}
	if cfg.Mapping != "" {
		b.WriteString(cli.SubtleStyle.Render("Includes entries from " + cfg.Mapping))
		b.WriteString("\n")
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
