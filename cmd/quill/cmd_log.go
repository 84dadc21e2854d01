package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/draftline/quill/pkg/object"
	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [start]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			var start object.Hash
			if len(args) == 1 {
				start, err = resolveRevision(r, args[0])
				if err != nil {
					return err
				}
			}

			commits, err := r.GetCommitHistory(start, limit)
			if err != nil {
				return err
			}
			if len(commits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			headHash, _ := r.ResolveRef("HEAD")
			branchName := ""
			if head, err := r.Head(); err == nil && strings.HasPrefix(head, "refs/heads/") {
				branchName = strings.TrimPrefix(head, "refs/heads/")
			}

			out := cmd.OutOrStdout()
			for _, c := range commits {
				decoration := buildDecoration(c.Hash, headHash, branchName)

				if oneline {
					if decoration != "" {
						fmt.Fprintf(out, "%s %s %s\n", shortHash(string(c.Hash)), decoration, c.Message)
					} else {
						fmt.Fprintf(out, "%s %s\n", shortHash(string(c.Hash)), c.Message)
					}
					continue
				}

				if decoration != "" {
					fmt.Fprintf(out, "commit %s %s\n", c.Hash, decoration)
				} else {
					fmt.Fprintf(out, "commit %s\n", c.Hash)
				}
				if c.IsMerge() {
					parents := make([]string, len(c.Parents))
					for i, p := range c.Parents {
						parents[i] = shortHash(string(p))
					}
					fmt.Fprintf(out, "Merge:  %s\n", strings.Join(parents, " "))
				}
				fmt.Fprintf(out, "Author: %s <%s>\n", c.AuthorName, c.AuthorEmail)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format("2006-01-02 15:04:05"))
				if c.Domain != "" {
					fmt.Fprintf(out, "Domain: %s\n", c.Domain)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")

	return cmd
}

// buildDecoration returns "(HEAD -> main)" for the current head commit
// and "" for everything else.
func buildDecoration(commitHash, headHash object.Hash, branchName string) string {
	if commitHash != headHash {
		return ""
	}
	if branchName != "" {
		return "(HEAD -> " + branchName + ")"
	}
	return "(HEAD)"
}

// resolveRevision turns a branch, tag, or full hash into a commit hash.
func resolveRevision(r *repo.Repository, rev string) (object.Hash, error) {
	if h, err := r.ResolveRef(rev); err == nil {
		return h, nil
	}
	if tag, err := r.ResolveTag(rev); err == nil {
		return tag.Target, nil
	}
	h := object.Hash(rev)
	c, err := r.GetCommit(h)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", rev, err)
	}
	if c == nil {
		return "", fmt.Errorf("resolve %q: %w", rev, repo.ErrNotFound)
	}
	return h, nil
}
