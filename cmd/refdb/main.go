package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "refdb",
		Short: "Filesystem-backed Git reference database plumbing",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newShowRefCmd())
	root.AddCommand(newUpdateRefCmd())
	root.AddCommand(newSymbolicRefCmd())
	root.AddCommand(newDeleteRefCmd())
	root.AddCommand(newPackRefsCmd())
	root.AddCommand(newReflogCmd())
	root.AddCommand(newLsRemoteCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "refdb 0.1.0-dev")
		},
	}
}

// gitDirFlag resolves the -C/--git-dir-style root every subcommand
// shares: the directory holding HEAD, refs/, and packed-refs.
func gitDirFlag(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("git-dir")
	if dir == "" {
		dir = ".git"
	}
	return dir
}

func addGitDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("git-dir", "", "path to the git directory (default \".git\")")
}
