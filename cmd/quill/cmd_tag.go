package main

import (
	"fmt"
	"strings"

	"github.com/draftline/quill/pkg/object"
	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var (
		deleteTag  string
		message    string
		authorName string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				names, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			name := args[0]
			var target object.Hash
			if len(args) == 2 {
				target, err = resolveRevision(r, args[1])
			} else {
				target, err = r.ResolveRef("HEAD")
			}
			if err != nil {
				return err
			}

			t, err := r.Tag(target, name, message, resolveAuthor(authorName, email))
			if err != nil {
				return err
			}
			kind := "lightweight"
			if t.Annotated {
				kind = "annotated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s tag %s at %s\n", kind, t.Name, shortHash(string(t.Target)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message (creates an annotated tag)")
	cmd.Flags().StringVar(&authorName, "author", "", "tagger name (default: $QUILL_AUTHOR_NAME, $USER)")
	cmd.Flags().StringVar(&email, "email", "", "tagger email (default: $QUILL_AUTHOR_EMAIL)")

	return cmd
}
