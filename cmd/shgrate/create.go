package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/astasoft/shgrate"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a timestamped migration/rollback script pair",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		configPath := v.GetString("config")

		var doc ConfigDoc
		if strings.TrimSpace(configPath) != "" {
			if err := doc.Load(configPath); err != nil {
				log.Printf("warning: failed to load config: %v", err)
			}
		}

		name := "migration"
		if len(args) > 0 {
			name = args[0]
		}

		pair, err := shgrate.CreateMigration(shgrate.CreateOptions{
			Name:          name,
			MigrationsDir: dirOrDefault(doc.MigrationsDir, constants.DefaultMigrationsDir),
			RollbackDir:   dirOrDefault(doc.RollbackDir, constants.DefaultRollbackDir),
			Suffix:        doc.ScriptSuffix,
		})
		if err != nil {
			return err
		}
		fmt.Println(pair.Migration)
		fmt.Println(pair.Rollback)
		return nil
	},
}
