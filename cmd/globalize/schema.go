package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-globalize/internal/migrations"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage translation tables of manifest models",
	}
	cmd.AddCommand(newSchemaSQLCmd(opts))
	cmd.AddCommand(newSchemaCreateCmd(opts))
	cmd.AddCommand(newSchemaDropCmd(opts))
	return cmd
}

func newSchemaSQLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sql [model]...",
		Short: "Print CREATE TABLE statements without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := opts.env.Models(args)
			if err != nil {
				return err
			}
			name, err := opts.env.Dialect()
			if err != nil {
				return err
			}
			for _, model := range models {
				ddl, err := migrations.TranslationTableSQL(name, model, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", ddl)
			}
			return nil
		},
	}
}

func newSchemaCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create [model]...",
		Short: "Create translation tables and their indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := opts.env.Models(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := opts.env.OpenDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, model := range models {
				if err := migrations.CreateTranslationTable(ctx, db, model, nil); err != nil {
					return fmt.Errorf("create %s: %w", model.TranslationTable(), err)
				}
				opts.env.Logger.Info("globalize.schema.created", "model", model.Name(), "table", model.TranslationTable())
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", model.TranslationTable())
			}
			return nil
		},
	}
}

func newSchemaDropCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drop [model]...",
		Short: "Drop translation tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := opts.env.Models(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := opts.env.OpenDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, model := range models {
				if err := migrations.DropTranslationTable(ctx, db, model); err != nil {
					return fmt.Errorf("drop %s: %w", model.TranslationTable(), err)
				}
				opts.env.Logger.Info("globalize.schema.dropped", "model", model.Name(), "table", model.TranslationTable())
				fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", model.TranslationTable())
			}
			return nil
		},
	}
}
