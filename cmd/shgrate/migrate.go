package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply every pending migration in chronological order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dry, _ := cmd.Flags().GetBool("dry-run")
		rc, err := newRunContext(ctx, optionsFromViper(dry))
		if err != nil {
			return err
		}
		defer rc.Close()

		applied, err := rc.migrator.MigrateUp(ctx)
		for _, name := range applied {
			fmt.Printf("applied %s\n", name)
		}
		return err
	},
}
