package main

import (
	"fmt"
	"strings"

	"github.com/draftline/quill/pkg/object"
	"github.com/draftline/quill/pkg/repo"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var (
		deleteBranch string
		protected    bool
		description  string
	)

	cmd := &cobra.Command{
		Use:   "branch [name] [start-point]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			if strings.TrimSpace(deleteBranch) != "" {
				if len(args) > 0 {
					return fmt.Errorf("branch --delete does not accept positional args")
				}
				return r.DeleteBranch(deleteBranch)
			}

			if len(args) == 0 {
				return listBranches(cmd, r)
			}

			name := args[0]
			var at object.Hash
			if len(args) == 2 {
				at, err = resolveRevision(r, args[1])
				if err != nil {
					return err
				}
			}

			var opts *repo.BranchOptions
			if protected || description != "" {
				opts = &repo.BranchOptions{Protected: protected, Description: description}
			}

			b, err := r.CreateBranch(name, at, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "branch %s at %s\n", b.Name, shortHash(string(b.Head)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	cmd.Flags().BoolVar(&protected, "protected", false, "protect the new branch from deletion")
	cmd.Flags().StringVar(&description, "description", "", "description for the new branch")

	return cmd
}

func listBranches(cmd *cobra.Command, r *repo.Repository) error {
	branches, err := r.ListBranches()
	if err != nil {
		return err
	}
	current, _ := r.CurrentBranch()

	out := cmd.OutOrStdout()
	for _, b := range branches {
		marker := " "
		if b.Name == current {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s %s", marker, b.Name, shortHash(string(b.Head)))
		var notes []string
		if b.IsDefault {
			notes = append(notes, "default")
		}
		if b.Protected {
			notes = append(notes, "protected")
		}
		if len(notes) > 0 {
			line += " [" + strings.Join(notes, ", ") + "]"
		}
		if b.Description != "" {
			line += " " + b.Description
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func newSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <branch>",
		Short: "Point HEAD at another branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			defer r.Close()

			b, err := r.SwitchBranch(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "switched to branch '%s' at %s\n", b.Name, shortHash(string(b.Head)))
			return nil
		},
	}
}
