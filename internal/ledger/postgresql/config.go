package postgresql

import (
	"fmt"

	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/util"
)

type Config struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *Config) ToMap() map[string]interface{} {
	// Prefer explicit DSN; otherwise, build from components when host is provided.
	dsn, hasDSN := util.TrimEmptyCheck(c.DSN)
	host, hasHost := util.TrimEmptyCheck(c.Host)
	if !hasDSN && hasHost {
		port := c.Port
		if port == 0 {
			port = constants.DefaultPostgresPort
		}
		ssl := util.TrimWithDefault(c.SSLMode, constants.DefaultPostgresSSLMode)

		// Build DSN in the common form accepted by pgx stdlib.
		fields := util.TrimSpaceFields(c.User, c.Password, c.DBName)
		user, password, dbname := fields[0], fields[1], fields[2]
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			user, password, host, port, dbname, ssl,
		)
	}
	return map[string]interface{}{
		"dsn": dsn,
	}
}
