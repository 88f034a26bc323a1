package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anonymeye/apex-platform/internal/forms"
	"github.com/anonymeye/apex-platform/internal/query"
	"github.com/anonymeye/apex-platform/pkg/types"
)

func newConnectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connection",
		Aliases: []string{"connections", "conn"},
		Short:   "Manage provider connections",
	}

	cmd.AddCommand(newConnectionListCmd())
	cmd.AddCommand(newConnectionGetCmd())
	cmd.AddCommand(newConnectionCreateCmd())
	cmd.AddCommand(newConnectionUpdateCmd())
	cmd.AddCommand(newConnectionDeleteCmd())
	return cmd
}

func newConnectionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			conns, err := query.Fetch(cmd.Context(), app.Cache, query.ListKey(query.ResourceConnections),
				func(ctx context.Context) ([]types.Connection, error) {
					return app.API.ListConnections(ctx)
				})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(conns)
			}
			rows := make([][]string, 0, len(conns))
			for _, c := range conns {
				rows = append(rows, []string{c.ID, c.Name, c.Provider, orDash(c.BaseURL), formatTime(c.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "NAME", "PROVIDER", "BASE URL", "CREATED"}, rows)
			return nil
		},
	}
}

func newConnectionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			conn, err := query.Fetch(cmd.Context(), app.Cache, query.GetKey(query.ResourceConnections, args[0]),
				func(ctx context.Context) (*types.Connection, error) {
					return app.API.GetConnection(ctx, args[0])
				})
			if err != nil {
				return err
			}
			return printJSON(conn)
		},
	}
}

func newConnectionCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create a connection from a YAML definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			var in types.ConnectionInput
			if err := readYAMLFile(file, &in); err != nil {
				return err
			}
			if err := forms.ValidateConnection(in); err != nil {
				return err
			}

			var created *types.Connection
			err := app.Cache.Mutate(cmd.Context(), query.ResourceConnections, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateConnection(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created connection %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newConnectionUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Update a connection, sending only changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			current, err := app.API.GetConnection(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			original := types.ConnectionInput{
				Name:     current.Name,
				Provider: current.Provider,
				BaseURL:  current.BaseURL,
			}

			edited := original
			if err := readYAMLFile(file, &edited); err != nil {
				return err
			}
			if err := forms.ValidateConnection(edited); err != nil {
				return err
			}

			patch, err := forms.Diff(original, edited)
			if err != nil {
				return err
			}
			if len(patch) == 0 {
				fmt.Println("No changes")
				return nil
			}

			return app.Cache.Mutate(cmd.Context(), query.ResourceConnections, func(ctx context.Context) error {
				_, err := app.API.UpdateConnection(ctx, args[0], patch)
				if err == nil {
					fmt.Printf("Updated connection %s (%d field(s))\n", args[0], len(patch))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newConnectionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceConnections, func(ctx context.Context) error {
				return app.API.DeleteConnection(ctx, args[0])
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted connection %s\n", args[0])
			return nil
		},
	}
}
