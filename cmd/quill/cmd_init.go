package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		projectID  string
		branch     string
		storage    string
		authorName string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty quill repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			if projectID == "" {
				projectID = filepath.Base(abs)
			}

			r, root, err := repo.Init(abs, projectID, resolveAuthor(authorName, email), &repo.InitOptions{
				DefaultBranch: branch,
				Storage:       storage,
			})
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "initialized empty quill repository in %s\n", filepath.Join(r.RootDir, ".quill")+string(filepath.Separator))
			fmt.Fprintf(out, "root commit %s\n", shortHash(string(root.Hash)))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project identifier (default: directory name)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "initial branch name (default: main)")
	cmd.Flags().StringVar(&storage, "storage", "", "object storage backend: file or sqlite (default: file)")
	cmd.Flags().StringVar(&authorName, "author", "", "author name (default: $QUILL_AUTHOR_NAME, $USER)")
	cmd.Flags().StringVar(&email, "email", "", "author email (default: $QUILL_AUTHOR_EMAIL)")

	return cmd
}
