package main

import (
	"fmt"

	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newReflogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog <name>",
		Short: "Show a reference's reflog, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gitDir := gitDirFlag(cmd)
			if _, err := refs.Open(gitDir); err != nil {
				return err
			}
			w := refs.NewFileReflogWriter(gitDir)
			entries, err := w.ReadReflog(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s..%s %s\n", e.Ref, e.OldID, e.NewID, e.Message)
			}
			return nil
		},
	}
	addGitDirFlag(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "limit the number of entries shown (0 = all)")
	return cmd
}
