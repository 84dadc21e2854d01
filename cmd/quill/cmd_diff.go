package main

import (
	"fmt"

	"github.com/draftline/quill/pkg/diff"
	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var stat bool

	cmd := &cobra.Command{
		Use:   "diff <base> [compare]",
		Short: "Show changes between two commits",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			base, err := resolveRevision(r, args[0])
			if err != nil {
				return err
			}
			compare, err := r.ResolveRef("HEAD")
			if err != nil {
				return err
			}
			if len(args) == 2 {
				compare, err = resolveRevision(r, args[1])
				if err != nil {
					return err
				}
			}

			result, err := r.Diff(base, compare)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if stat {
				for _, fd := range result.Files {
					fmt.Fprintf(out, " %s | +%d -%d (%s)\n", fd.Path, fd.Additions, fd.Deletions, fd.Status)
				}
				fmt.Fprintf(out, " %d files changed, %d insertions(+), %d deletions(-)\n",
					len(result.Files), result.Additions, result.Deletions)
				return nil
			}

			for i := range result.Files {
				fmt.Fprint(out, diff.Format(&result.Files[i]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stat, "stat", false, "show per-file change counts instead of hunks")

	return cmd
}
