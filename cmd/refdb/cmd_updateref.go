package main

import (
	"fmt"

	"github.com/gitrefdb/refdb/pkg/oid"
	"github.com/gitrefdb/refdb/pkg/refs"
	"github.com/spf13/cobra"
)

func newUpdateRefCmd() *cobra.Command {
	var oldHex, message string

	cmd := &cobra.Command{
		Use:   "update-ref <name> <new-oid>",
		Short: "Update a reference to a new object id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := refs.Open(gitDirFlag(cmd))
			if err != nil {
				return err
			}
			newID, err := oid.FromHex(args[1])
			if err != nil {
				return fmt.Errorf("update-ref: %w", err)
			}

			u := db.NewUpdate(args[0], false)
			u.SetNewObjectID(newID)
			if oldHex != "" {
				oldID, err := oid.FromHex(oldHex)
				if err != nil {
					return fmt.Errorf("update-ref: %w", err)
				}
				u.SetExpectedOldObjectID(oldID)
			}
			if message == "" {
				message = "update-ref: " + args[0]
			}
			u.SetMessage(message, false)

			if _, err := u.Commit(); err != nil {
				return err
			}
			return nil
		},
	}
	addGitDirFlag(cmd)
	cmd.Flags().StringVar(&oldHex, "old", "", "require the current value to equal this object id")
	cmd.Flags().StringVarP(&message, "message", "m", "", "reflog message")
	return cmd
}
