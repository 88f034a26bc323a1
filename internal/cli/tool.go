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

func newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tool",
		Aliases: []string{"tools"},
		Short:   "Manage tools",
	}

	cmd.AddCommand(newToolListCmd())
	cmd.AddCommand(newToolGetCmd())
	cmd.AddCommand(newToolCreateCmd())
	cmd.AddCommand(newToolUpdateCmd())
	cmd.AddCommand(newToolDeleteCmd())
	return cmd
}

func newToolListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			tools, err := query.Fetch(cmd.Context(), app.Cache, query.ListKey(query.ResourceTools),
				func(ctx context.Context) ([]types.Tool, error) {
					return app.API.ListTools(ctx)
				})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(tools)
			}
			rows := make([][]string, 0, len(tools))
			for _, t := range tools {
				rows = append(rows, []string{t.ID, t.Name, t.Type, orDash(t.KnowledgeBaseID), formatTime(t.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "NAME", "TYPE", "KNOWLEDGE BASE", "CREATED"}, rows)
			return nil
		},
	}
}

func newToolGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			tool, err := query.Fetch(cmd.Context(), app.Cache, query.GetKey(query.ResourceTools, args[0]),
				func(ctx context.Context) (*types.Tool, error) {
					return app.API.GetTool(ctx, args[0])
				})
			if err != nil {
				return err
			}
			return printJSON(tool)
		},
	}
}

func newToolCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create a tool from a YAML definition",
		Long: `Create a tool from a YAML definition. The config_json field holds the
tool-type specific configuration as a JSON string and must parse as a
JSON object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			var in types.ToolInput
			if err := readYAMLFile(file, &in); err != nil {
				return err
			}
			if err := forms.ValidateTool(in); err != nil {
				return err
			}

			var created *types.Tool
			err := app.Cache.Mutate(cmd.Context(), query.ResourceTools, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateTool(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created tool %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newToolUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Update a tool, sending only changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			current, err := app.API.GetTool(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			original := types.ToolInput{
				Name:            current.Name,
				Description:     current.Description,
				Type:            current.Type,
				ConfigJSON:      string(current.Config),
				KnowledgeBaseID: current.KnowledgeBaseID,
			}

			edited := original
			if err := readYAMLFile(file, &edited); err != nil {
				return err
			}
			if err := forms.ValidateTool(edited); err != nil {
				return err
			}

			patch, err := forms.Diff(original, edited)
			if err != nil {
				return err
			}
			// ConfigJSON is excluded from the JSON form of the input, so
			// config changes are carried explicitly.
			if edited.ConfigJSON != original.ConfigJSON {
				patch["config"] = rawPatchValue(edited.ConfigJSON)
			}
			if len(patch) == 0 {
				fmt.Println("No changes")
				return nil
			}

			return app.Cache.Mutate(cmd.Context(), query.ResourceTools, func(ctx context.Context) error {
				_, err := app.API.UpdateTool(ctx, args[0], patch)
				if err == nil {
					fmt.Printf("Updated tool %s (%d field(s))\n", args[0], len(patch))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newToolDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceTools, func(ctx context.Context) error {
				return app.API.DeleteTool(ctx, args[0])
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted tool %s\n", args[0])
			return nil
		},
	}
}
