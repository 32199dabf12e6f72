package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "shgrate",
	Short: "Apply and roll back timestamped SQL migrations recorded in a per-environment ledger",
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "./shgrate.yaml")
	v.SetDefault("environment", "")
	v.SetDefault("database", "")
	v.SetDefault("log_file", "")
	v.SetDefault("dry_run", false)

	// Environment variables support: SHGRATE_CONFIG, SHGRATE_ENVIRONMENT, ...
	v.SetEnvPrefix("SHGRATE")
	v.AutomaticEnv()
	// Bind flags via Cobra and then bind to Viper. The dry-run flag is NOT
	// viper-bound: migrate and rollback each own one, and a shared viper key
	// would keep only the last binding; the commands read their own flag.
	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to the shgrate config yaml")
	rootCmd.PersistentFlags().String("environment", v.GetString("environment"), "ledger environment namespace (default from config, else production)")
	rootCmd.PersistentFlags().String("database", v.GetString("database"), "override the target database name from the config file")
	rootCmd.PersistentFlags().String("log-file", v.GetString("log_file"), "append log output to this file instead of stderr")
	migrateCmd.Flags().Bool("dry-run", v.GetBool("dry_run"), "print pending migrations without touching the database or ledger")
	rollbackCmd.Flags().Bool("dry-run", v.GetBool("dry_run"), "print the stored rollback snapshot without executing it")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("environment", rootCmd.PersistentFlags().Lookup("environment"))
	_ = v.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	_ = v.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(createCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
