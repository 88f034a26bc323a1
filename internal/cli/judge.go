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

func newJudgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "judge",
		Aliases: []string{"judges", "judge-config"},
		Short:   "Manage LLM-judge configurations",
	}

	cmd.AddCommand(newJudgeListCmd())
	cmd.AddCommand(newJudgeGetCmd())
	cmd.AddCommand(newJudgeCreateCmd())
	cmd.AddCommand(newJudgeUpdateCmd())
	cmd.AddCommand(newJudgeDeleteCmd())
	return cmd
}

func newJudgeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List judge configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			judges, err := app.Flow.Judges(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(judges)
			}
			rows := make([][]string, 0, len(judges))
			for _, j := range judges {
				rows = append(rows, []string{j.ID, j.Name, j.ModelRefID, formatTime(j.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "NAME", "MODEL REF", "CREATED"}, rows)
			return nil
		},
	}
}

func newJudgeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one judge configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			judge, err := query.Fetch(cmd.Context(), app.Cache, query.GetKey(query.ResourceJudgeConfigs, args[0]),
				func(ctx context.Context) (*types.JudgeConfig, error) {
					return app.API.GetJudgeConfig(ctx, args[0])
				})
			if err != nil {
				return err
			}
			return printJSON(judge)
		},
	}
}

func newJudgeCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create a judge configuration from a YAML definition",
		Long: `Create a judge configuration from a YAML definition. The rubric_json
field holds the scoring rubric as a JSON string and must parse as a
JSON object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			var in types.JudgeConfigInput
			if err := readYAMLFile(file, &in); err != nil {
				return err
			}
			if err := forms.ValidateJudgeConfig(in); err != nil {
				return err
			}

			var created *types.JudgeConfig
			err := app.Cache.Mutate(cmd.Context(), query.ResourceJudgeConfigs, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateJudgeConfig(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created judge configuration %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newJudgeUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Update a judge configuration, sending only changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			current, err := app.API.GetJudgeConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			original := types.JudgeConfigInput{
				Name:           current.Name,
				PromptTemplate: current.PromptTemplate,
				RubricJSON:     string(current.Rubric),
				ModelRefID:     current.ModelRefID,
			}

			edited := original
			if err := readYAMLFile(file, &edited); err != nil {
				return err
			}
			if err := forms.ValidateJudgeConfig(edited); err != nil {
				return err
			}

			patch, err := forms.Diff(original, edited)
			if err != nil {
				return err
			}
			// RubricJSON is excluded from the JSON form of the input, so
			// rubric changes are carried explicitly.
			if edited.RubricJSON != original.RubricJSON {
				patch["rubric"] = rawPatchValue(edited.RubricJSON)
			}
			if len(patch) == 0 {
				fmt.Println("No changes")
				return nil
			}

			return app.Cache.Mutate(cmd.Context(), query.ResourceJudgeConfigs, func(ctx context.Context) error {
				_, err := app.API.UpdateJudgeConfig(ctx, args[0], patch)
				if err == nil {
					fmt.Printf("Updated judge configuration %s (%d field(s))\n", args[0], len(patch))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newJudgeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a judge configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceJudgeConfigs, func(ctx context.Context) error {
				return app.API.DeleteJudgeConfig(ctx, args[0])
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted judge configuration %s\n", args[0])
			return nil
		},
	}
}
