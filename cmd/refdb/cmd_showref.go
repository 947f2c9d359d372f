package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newShowRefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-ref [name]",
		Short: "Show references, or a single resolved reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refs.Open(gitDirFlag(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				ref, err := db.GetRef(args[0])
				if err != nil {
					return err
				}
				if ref == nil {
					return fmt.Errorf("show-ref: %q not found", args[0])
				}
				printRef(out, ref)
				return nil
			}

			all, err := db.GetRefs("")
			if err != nil {
				return err
			}
			names := make([]string, 0, len(all))
			for name := range all {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				printRef(out, all[name])
			}
			return nil
		},
	}
	addGitDirFlag(cmd)
	return cmd
}

func printRef(out io.Writer, ref *refs.Reference) {
	if ref.IsSymbolic() {
		fmt.Fprintf(out, "%s\tref: %s\n", ref.Name(), ref.SymbolicTarget())
		return
	}
	fmt.Fprintf(out, "%s\t%s\n", ref.ObjectID(), ref.Name())
}
