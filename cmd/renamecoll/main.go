package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var rootCmd = &cobra.Command{
	Use:   "renamecoll",
	Short: "Collection rename admin CLI",
	Long:  `Drives the collection rename subsystem's entry points against a catalog database.`,
}

var logLevel zerolog.Level = zerolog.InfoLevel

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(applyOpsRenameCmd)
	rootCmd.AddCommand(rollbackRenameCmd)
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn, error")
}

var logLevelFlag string

func configureLogger() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(logLevelFlag)
	if err != nil {
		lvl = logLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.StampMicro})
	zerolog.SetGlobalLevel(lvl)
}

func main() {
	cobra.OnInitialize(configureLogger)
	if _, err := maxprocs.Set(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
