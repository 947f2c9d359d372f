package main

import (
	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newPackRefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack-refs",
		Short: "Fold loose references into packed-refs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refs.Open(gitDirFlag(cmd))
			if err != nil {
				return err
			}
			return db.PackRefs()
		},
	}
	addGitDirFlag(cmd)
	return cmd
}
