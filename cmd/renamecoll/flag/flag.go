package flag

import (
	"github.com/catalogdb/renamecoll/internal/catalog/dbcore"
	"github.com/spf13/cobra"
)

// DBConfig registers the flags backing a dbcore.DBConfig, grounded on
// cmd/coordinator/cmd.go's inline MetaTable flag registration.
func DBConfig(cmd *cobra.Command, conf *dbcore.DBConfig) {
	cmd.Flags().StringVar(&conf.Username, "username", "renamecoll", "catalog db username")
	cmd.Flags().StringVar(&conf.Password, "password", "renamecoll", "catalog db password")
	cmd.Flags().StringVar(&conf.Address, "db-address", "postgres", "catalog db address")
	cmd.Flags().IntVar(&conf.Port, "db-port", 5432, "catalog db port")
	cmd.Flags().StringVar(&conf.DBName, "db-name", "catalog", "catalog db name")
	cmd.Flags().IntVar(&conf.MaxIdleConns, "max-idle-conns", 10, "catalog db max idle connections")
	cmd.Flags().IntVar(&conf.MaxOpenConns, "max-open-conns", 10, "catalog db max open connections")
	cmd.Flags().StringVar(&conf.SslMode, "ssl-mode", "disable", "catalog db ssl mode")
}
