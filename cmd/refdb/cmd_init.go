package main

import (
	"fmt"

	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty reference database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gitDir := gitDirFlag(cmd)
			if _, err := refs.Init(gitDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty reference database in %s\n", gitDir)
			return nil
		},
	}
	addGitDirFlag(cmd)
	return cmd
}
