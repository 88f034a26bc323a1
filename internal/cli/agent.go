package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anonymeye/apex-platform/internal/forms"
	"github.com/anonymeye/apex-platform/internal/query"
	"github.com/anonymeye/apex-platform/pkg/types"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agent",
		Aliases: []string{"agents"},
		Short:   "Manage agents",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentGetCmd())
	cmd.AddCommand(newAgentCreateCmd())
	cmd.AddCommand(newAgentUpdateCmd())
	cmd.AddCommand(newAgentDeleteCmd())
	cmd.AddCommand(newAgentSelectCmd())
	cmd.AddCommand(newAgentCurrentCmd())
	return cmd
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			agents, err := query.Fetch(cmd.Context(), app.Cache, query.ListKey(query.ResourceAgents),
				func(ctx context.Context) ([]types.Agent, error) {
					return app.API.ListAgents(ctx)
				})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(agents)
			}
			selected, _ := app.State.SelectedAgent()
			rows := make([][]string, 0, len(agents))
			for _, a := range agents {
				marker := ""
				if a.ID == selected {
					marker = "*"
				}
				rows = append(rows, []string{marker, a.ID, a.Name, a.ModelRefID,
					fmt.Sprintf("%d", len(a.ToolIDs)), formatTime(a.CreatedAt)})
			}
			table(os.Stdout, []string{"", "ID", "NAME", "MODEL REF", "TOOLS", "CREATED"}, rows)
			return nil
		},
	}
}

func newAgentGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			agent, err := query.Fetch(cmd.Context(), app.Cache, query.GetKey(query.ResourceAgents, args[0]),
				func(ctx context.Context) (*types.Agent, error) {
					return app.API.GetAgent(ctx, args[0])
				})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(agent)
			}
			fmt.Printf("Agent %s\n", agent.ID)
			fmt.Printf("  Name:           %s\n", agent.Name)
			fmt.Printf("  Description:    %s\n", orDash(agent.Description))
			fmt.Printf("  Model ref:      %s\n", agent.ModelRefID)
			fmt.Printf("  Tools:          %s\n", orDash(strings.Join(agent.ToolIDs, ", ")))
			fmt.Printf("  Temperature:    %g\n", agent.Temperature)
			fmt.Printf("  Max iterations: %d\n", agent.MaxIterations)
			return nil
		},
	}
}

func newAgentCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create an agent from a YAML definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			var in types.AgentInput
			if err := readYAMLFile(file, &in); err != nil {
				return err
			}
			if err := forms.ValidateAgent(in); err != nil {
				return err
			}

			var created *types.Agent
			err := app.Cache.Mutate(cmd.Context(), query.ResourceAgents, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateAgent(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created agent %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newAgentUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Update an agent, sending only changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			current, err := app.API.GetAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			original := agentInputFrom(current)

			edited := original
			if err := readYAMLFile(file, &edited); err != nil {
				return err
			}
			// Moving to another connection invalidates the previous model
			// choice unless the definition names a new one itself.
			if edited.ConnectionID != original.ConnectionID && edited.ModelRefID == original.ModelRefID {
				reset := original
				forms.ApplyConnectionChange(&reset, edited.ConnectionID)
				edited.ModelRefID = reset.ModelRefID
			}
			if err := forms.ValidateAgent(edited); err != nil {
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

			return app.Cache.Mutate(cmd.Context(), query.ResourceAgents, func(ctx context.Context) error {
				_, err := app.API.UpdateAgent(ctx, args[0], patch)
				if err == nil {
					fmt.Printf("Updated agent %s (%d field(s))\n", args[0], len(patch))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newAgentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceAgents, func(ctx context.Context) error {
				return app.API.DeleteAgent(ctx, args[0])
			})
			if err != nil {
				return err
			}
			if selected, _ := app.State.SelectedAgent(); selected == args[0] {
				if err := app.State.ClearSelectedAgent(); err != nil {
					return err
				}
			}
			fmt.Printf("Deleted agent %s\n", args[0])
			return nil
		},
	}
}

func newAgentSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Persist an agent as the working default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			// Verify the agent exists before persisting the selection.
			agent, err := app.API.GetAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.State.SaveSelectedAgent(agent.ID); err != nil {
				return err
			}
			fmt.Printf("Selected agent %s (%s)\n", agent.ID, agent.Name)
			return nil
		},
	}
}

func newAgentCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the selected agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			selected, err := app.State.SelectedAgent()
			if err != nil {
				return err
			}
			if selected == "" {
				fmt.Println("No agent selected")
				return nil
			}
			agent, err := app.API.GetAgent(cmd.Context(), selected)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(agent)
			}
			fmt.Printf("%s  %s\n", agent.ID, agent.Name)
			return nil
		},
	}
}

func agentInputFrom(a *types.Agent) types.AgentInput {
	return types.AgentInput{
		Name:          a.Name,
		Description:   a.Description,
		SystemPrompt:  a.SystemPrompt,
		ConnectionID:  a.ConnectionID,
		ModelRefID:    a.ModelRefID,
		ToolIDs:       a.ToolIDs,
		Temperature:   a.Temperature,
		MaxIterations: a.MaxIterations,
	}
}
