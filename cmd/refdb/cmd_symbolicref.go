package main

import (
	"fmt"

	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newSymbolicRefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbolic-ref <name> [target]",
		Short: "Read or set a symbolic reference",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refs.Open(gitDirFlag(cmd))
			if err != nil {
				return err
			}

			if len(args) == 1 {
				ref, err := db.GetRef(args[0])
				if err != nil {
					return err
				}
				if ref == nil {
					return fmt.Errorf("symbolic-ref: %q not found", args[0])
				}
				if !ref.IsSymbolic() {
					return fmt.Errorf("symbolic-ref: %q is not symbolic", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), ref.SymbolicTarget())
				return nil
			}

			u := db.NewUpdate(args[0], false)
			u.SetSymbolicTarget(args[1])
			u.SetMessage(fmt.Sprintf("symbolic-ref: %s -> %s", args[0], args[1]), false)
			_, err = u.Commit()
			return err
		},
	}
	addGitDirFlag(cmd)
	return cmd
}
