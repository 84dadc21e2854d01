package main

import (
	"errors"
	"fmt"

	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var (
		into       string
		authorName string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			target := into
			if target == "" {
				target, err = r.CurrentBranch()
				if err != nil {
					return fmt.Errorf("merge: no target branch (detached HEAD); use --into")
				}
			}

			out := cmd.OutOrStdout()
			result, err := r.Merge(target, source, resolveAuthor(authorName, email))
			if err != nil {
				var conflict *repo.MergeConflictError
				if errors.As(err, &conflict) {
					fmt.Fprintf(out, "merge of '%s' into '%s' failed with %d conflict", source, target, len(conflict.Conflicts))
					if len(conflict.Conflicts) != 1 {
						fmt.Fprint(out, "s")
					}
					fmt.Fprintln(out)
					for _, c := range conflict.Conflicts {
						fmt.Fprintf(out, "  CONFLICT: %s\n", c.Path)
					}
					return err
				}
				return err
			}

			switch {
			case result.UpToDate:
				fmt.Fprintln(out, "already up to date")
			case result.FastForward:
				fmt.Fprintf(out, "fast-forwarded '%s' to %s\n", target, shortHash(string(result.Commit)))
			default:
				for _, p := range result.MergedPaths {
					fmt.Fprintf(out, "  %s: merged\n", p)
				}
				fmt.Fprintf(out, "[%s %s] Merge branch '%s' into '%s'\n",
					target, shortHash(string(result.Commit)), source, target)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "target branch (default: current branch)")
	cmd.Flags().StringVar(&authorName, "author", "", "author name (default: $QUILL_AUTHOR_NAME, $USER)")
	cmd.Flags().StringVar(&email, "email", "", "author email (default: $QUILL_AUTHOR_EMAIL)")

	return cmd
}
