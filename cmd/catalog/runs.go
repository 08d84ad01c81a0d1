package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/autoparts-catalog/internal/cli"
	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/export"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the history of catalog runs",
		Long: `List previous runs with their record counts. Use the subcommands to show the
full report of one run, export its records again or delete it.`,
		Args: cobra.NoArgs,
		RunE: runListRuns,
	}

	cmd.Flags().Int("limit", 20, "number of runs to show (0 for all)")

	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsExportCmd())
	cmd.AddCommand(runsDeleteCmd())

	return cmd
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRunList(runs))
	return err
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the report of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			run, err := store.GetRun(ctx, args[0])
			if err != nil {
				return notFound(err, args[0])
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRunSummary(*run))
			return err
		},
	}
}

func runsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write the stored records of a run to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			records, err := store.GetRunRecords(ctx, args[0])
			if err != nil {
				return notFound(err, args[0])
			}

			if output == "" {
				return export.WriteRecords(cmd.OutOrStdout(), records)
			}
			if err := export.WriteFile(output, records); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(),
				cli.FormatSuccess(fmt.Sprintf("Wrote %d records to %s", records.Len(), output)))
			return err
		},
	}

	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}

func runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a run and its stored records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRun(ctx, args[0]); err != nil {
				return notFound(err, args[0])
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted run "+args[0]))
			return err
		},
	}
}

func notFound(err error, id string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no run with id %s", id), err)
	}
	return err
}
