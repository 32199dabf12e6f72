package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Undo the single most recently applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dry, _ := cmd.Flags().GetBool("dry-run")
		rc, err := newRunContext(ctx, optionsFromViper(dry))
		if err != nil {
			return err
		}
		defer rc.Close()

		name, err := rc.migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		if name != "" && !dry {
			fmt.Printf("rolled back %s\n", name)
		}
		return nil
	},
}
