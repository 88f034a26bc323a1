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

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "model",
		Aliases: []string{"models", "model-ref"},
		Short:   "Manage model references",
	}

	cmd.AddCommand(newModelListCmd())
	cmd.AddCommand(newModelGetCmd())
	cmd.AddCommand(newModelCreateCmd())
	cmd.AddCommand(newModelUpdateCmd())
	cmd.AddCommand(newModelDeleteCmd())
	return cmd
}

func newModelListCmd() *cobra.Command {
	var connectionID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List model references, optionally scoped to a connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			key := query.ListKey(query.ResourceModelRefs)
			if connectionID != "" {
				key = query.PageKey(query.ResourceModelRefs, connectionID, 0, 0)
			}
			models, err := query.Fetch(cmd.Context(), app.Cache, key,
				func(ctx context.Context) ([]types.ModelRef, error) {
					return app.API.ListModelRefs(ctx, connectionID)
				})
			if err != nil {
				return err
			}
			if connectionID != "" {
				// The backend filters by connection_id; re-apply the
				// filter locally so a backend that ignores the query
				// parameter cannot offer models of another connection.
				models = forms.ModelOptions(models, connectionID)
			}
			if app.JSON {
				return printJSON(models)
			}
			rows := make([][]string, 0, len(models))
			for _, m := range models {
				rows = append(rows, []string{m.ID, m.Name, m.ModelName, m.ConnectionID, formatTime(m.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "NAME", "MODEL", "CONNECTION", "CREATED"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&connectionID, "connection", "", "only models of this connection")
	return cmd
}

func newModelGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one model reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			model, err := query.Fetch(cmd.Context(), app.Cache, query.GetKey(query.ResourceModelRefs, args[0]),
				func(ctx context.Context) (*types.ModelRef, error) {
					return app.API.GetModelRef(ctx, args[0])
				})
			if err != nil {
				return err
			}
			return printJSON(model)
		},
	}
}

func newModelCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create a model reference from a YAML definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			var in types.ModelRefInput
			if err := readYAMLFile(file, &in); err != nil {
				return err
			}
			if err := forms.ValidateModelRef(in); err != nil {
				return err
			}

			var created *types.ModelRef
			err := app.Cache.Mutate(cmd.Context(), query.ResourceModelRefs, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateModelRef(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created model reference %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newModelUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Update a model reference, sending only changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			current, err := app.API.GetModelRef(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			original := types.ModelRefInput{
				ConnectionID: current.ConnectionID,
				Name:         current.Name,
				ModelName:    current.ModelName,
			}

			edited := original
			if err := readYAMLFile(file, &edited); err != nil {
				return err
			}
			if err := forms.ValidateModelRef(edited); err != nil {
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

			return app.Cache.Mutate(cmd.Context(), query.ResourceModelRefs, func(ctx context.Context) error {
				_, err := app.API.UpdateModelRef(ctx, args[0], patch)
				if err == nil {
					fmt.Printf("Updated model reference %s (%d field(s))\n", args[0], len(patch))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newModelDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a model reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceModelRefs, func(ctx context.Context) error {
				return app.API.DeleteModelRef(ctx, args[0])
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted model reference %s\n", args[0])
			return nil
		},
	}
}
