package main

import (
	"fmt"

	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newDeleteRefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-ref <name>",
		Short: "Delete a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refs.Open(gitDirFlag(cmd))
			if err != nil {
				return err
			}
			if err := db.Delete(db.NewUpdate(args[0], false)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	addGitDirFlag(cmd)
	return cmd
}
