package main

import (
	"context"
	"fmt"

	"github.com/astasoft/shgrate/pkg/status"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations for the environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rc, err := newRunContext(ctx, optionsFromViper(false))
		if err != nil {
			return err
		}
		defer rc.Close()

		info, err := status.FromMigrator(rc.migrator)
		if err != nil {
			return err
		}
		fmt.Print(info.FormatHuman())
		return nil
	},
}
