package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var (
		message    string
		authorName string
		email      string
		domain     string
		sign       bool
		signKey    string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record a snapshot of the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			content, err := snapshotWorkdir(r.RootDir)
			if err != nil {
				return err
			}

			opts := &repo.CommitOptions{Domain: domain}
			if sign || signKey != "" {
				signer, keyPath, err := newSSHCommitSigner(signKey)
				if err != nil {
					return err
				}
				opts.Signer = signer
				fmt.Fprintf(cmd.OutOrStdout(), "signing with %s\n", keyPath)
			}

			c, err := r.Commit(resolveAuthor(authorName, email), message, content, opts)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil {
				branch = "HEAD"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[%s %s] %s\n", branch, shortHash(string(c.Hash)), message)
			fmt.Fprintf(out, " %d files changed, %d insertions(+), %d deletions(-)\n",
				c.FilesChanged, c.Additions, c.Deletions)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&authorName, "author", "", "author name (default: $QUILL_AUTHOR_NAME, $USER)")
	cmd.Flags().StringVar(&email, "email", "", "author email (default: $QUILL_AUTHOR_EMAIL)")
	cmd.Flags().StringVar(&domain, "domain", "", "domain label to record on the commit")
	cmd.Flags().BoolVar(&sign, "sign", false, "sign the commit with the default SSH key")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "sign the commit with the given SSH private key")

	return cmd
}

// snapshotWorkdir reads every file under root into the snapshot map,
// keyed by slash-separated path relative to root. The .quill state
// directory is skipped.
func snapshotWorkdir(root string) (map[string][]byte, error) {
	content := make(map[string][]byte)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".quill" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		content[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}
