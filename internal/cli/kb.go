package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anonymeye/apex-platform/internal/forms"
	"github.com/anonymeye/apex-platform/internal/query"
	"github.com/anonymeye/apex-platform/pkg/types"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"knowledge"},
		Short:   "Manage knowledge bases and their documents",
	}

	cmd.AddCommand(newKBListCmd())
	cmd.AddCommand(newKBGetCmd())
	cmd.AddCommand(newKBCreateCmd())
	cmd.AddCommand(newKBUpdateCmd())
	cmd.AddCommand(newKBDeleteCmd())
	cmd.AddCommand(newKBDocsCmd())
	cmd.AddCommand(newKBUploadCmd())
	cmd.AddCommand(newKBRemoveDocCmd())
	return cmd
}

func newKBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			kbs, err := query.Fetch(cmd.Context(), app.Cache, query.ListKey(query.ResourceKnowledge),
				func(ctx context.Context) ([]types.KnowledgeBase, error) {
					return app.API.ListKnowledgeBases(ctx)
				})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(kbs)
			}
			rows := make([][]string, 0, len(kbs))
			for _, kb := range kbs {
				rows = append(rows, []string{kb.ID, kb.Name, fmt.Sprintf("%d", kb.DocumentCount), formatTime(kb.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "NAME", "DOCS", "CREATED"}, rows)
			return nil
		},
	}
}

func newKBGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			kb, err := query.Fetch(cmd.Context(), app.Cache, query.GetKey(query.ResourceKnowledge, args[0]),
				func(ctx context.Context) (*types.KnowledgeBase, error) {
					return app.API.GetKnowledgeBase(ctx, args[0])
				})
			if err != nil {
				return err
			}
			return printJSON(kb)
		},
	}
}

func newKBCreateCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create --name <name>",
		Short: "Create a knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			in := types.KnowledgeBaseInput{Name: name, Description: description}
			if err := forms.ValidateKnowledgeBase(in); err != nil {
				return err
			}

			var created *types.KnowledgeBase
			err := app.Cache.Mutate(cmd.Context(), query.ResourceKnowledge, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateKnowledgeBase(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created knowledge base %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "knowledge base name")
	cmd.Flags().StringVar(&description, "description", "", "knowledge base description")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newKBUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Update a knowledge base, sending only changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			current, err := app.API.GetKnowledgeBase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			original := types.KnowledgeBaseInput{Name: current.Name, Description: current.Description}

			edited := original
			if err := readYAMLFile(file, &edited); err != nil {
				return err
			}
			if err := forms.ValidateKnowledgeBase(edited); err != nil {
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

			return app.Cache.Mutate(cmd.Context(), query.ResourceKnowledge, func(ctx context.Context) error {
				_, err := app.API.UpdateKnowledgeBase(ctx, args[0], patch)
				if err == nil {
					fmt.Printf("Updated knowledge base %s (%d field(s))\n", args[0], len(patch))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newKBDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge base and its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceKnowledge, func(ctx context.Context) error {
				return app.API.DeleteKnowledgeBase(ctx, args[0])
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted knowledge base %s\n", args[0])
			return nil
		},
	}
}

func newKBDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs <kb-id>",
		Short: "List documents of a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			docs, err := query.Fetch(cmd.Context(), app.Cache, query.PageKey(query.ResourceDocuments, args[0], 0, 0),
				func(ctx context.Context) ([]types.Document, error) {
					return app.API.ListDocuments(ctx, args[0])
				})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(docs)
			}
			rows := make([][]string, 0, len(docs))
			for _, d := range docs {
				rows = append(rows, []string{d.ID, d.Filename, orDash(d.Status), fmt.Sprintf("%d", d.ChunkCount), formatTime(d.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "FILENAME", "STATUS", "CHUNKS", "CREATED"}, rows)
			return nil
		},
	}
}

func newKBUploadCmd() *cobra.Command {
	var chunkSize, chunkOverlap int

	cmd := &cobra.Command{
		Use:   "upload <kb-id> <file>",
		Short: "Upload a document for server-side chunking and embedding",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			params := types.UploadParams{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
			if err := forms.ValidateUploadParams(params); err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer f.Close()

			var doc *types.Document
			err = app.Cache.Mutate(cmd.Context(), query.ResourceDocuments, func(ctx context.Context) error {
				var err error
				doc, err = app.API.UploadDocument(ctx, args[0], filepath.Base(args[1]), f, params)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded %s as document %s\n", doc.Filename, doc.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 512, "chunk size in tokens")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 64, "chunk overlap in tokens")
	return cmd
}

func newKBRemoveDocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-doc <kb-id> <doc-id>",
		Short: "Delete a document from a knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			err := app.Cache.Mutate(cmd.Context(), query.ResourceDocuments, func(ctx context.Context) error {
				return app.API.DeleteDocument(ctx, args[0], args[1])
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted document %s\n", args[1])
			return nil
		},
	}
}
