package main

import (
	"fmt"
	"sort"

	"github.com/gitrefdb/refdb/internal/refspec"
	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

// newLsRemoteCmd demonstrates the transport-facing collaborator
// contract (spec.md §6): it reads only through GetRefs(prefix) and
// filters with the refspec matcher, never mutating the database.
func newLsRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-remote [pattern...]",
		Short: "List references, optionally filtered by refspec pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refs.Open(gitDirFlag(cmd))
			if err != nil {
				return err
			}
			all, err := db.GetRefs("")
			if err != nil {
				return err
			}

			matcher := refspec.NewMatcher(args...)
			names := make([]string, 0, len(all))
			for name := range all {
				if matcher.Match(name) {
					names = append(names, name)
				}
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "%s\t%s\n", all[name].ObjectID(), name)
			}
			return nil
		},
	}
	addGitDirFlag(cmd)
	return cmd
}
