package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/catalogdb/renamecoll/cmd/renamecoll/flag"
	"github.com/catalogdb/renamecoll/internal/catalog/dao"
	"github.com/catalogdb/renamecoll/internal/catalog/dbcore"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
	"github.com/catalogdb/renamecoll/internal/namespace"
	"github.com/spf13/cobra"
)

var (
	renameDBConfig         dbcore.DBConfig
	applyOpsRenameDBConfig dbcore.DBConfig
	rollbackRenameDBConfig dbcore.DBConfig
	renameDropTarget       bool
	renameStayTemp         bool
	applyOpsDropTarget     bool
	applyOpsStayTemp       bool
	applyOpsUUIDToRename   string
	applyOpsUUIDToDrop     string
)

var renameCmd = &cobra.Command{
	Use:   "rename <source> <target>",
	Short: "Rename a collection (source.db == target.db or cross-database)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		source, err := parseNamespace(args[0])
		exitOnErr(err)
		target, err := parseNamespace(args[1])
		exitOnErr(err)

		coord, closeDB, err := newCoordinator(renameDBConfig)
		exitOnErr(err)
		defer closeDB()

		opts := namespace.RenameOptions{DropTarget: renameDropTarget, StayTemp: renameStayTemp}
		exitOnErr(coord.Rename(context.Background(), source, target, opts))
	},
}

var applyOpsRenameCmd = &cobra.Command{
	Use:   "apply-ops-rename <dbName> <source> <target>",
	Short: "Replay a renameCollection operation-log entry",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		dbName := args[0]
		source, err := parseNamespace(args[1])
		exitOnErr(err)
		target, err := parseNamespace(args[2])
		exitOnErr(err)

		var uuidToRename, uuidToDrop types.OptionalCollectionID
		if applyOpsUUIDToRename != "" {
			id, err := types.ParseCollectionID(applyOpsUUIDToRename)
			exitOnErr(err)
			uuidToRename = types.SomeCollectionID(id)
		}
		if applyOpsUUIDToDrop != "" {
			id, err := types.ParseCollectionID(applyOpsUUIDToDrop)
			exitOnErr(err)
			uuidToDrop = types.SomeCollectionID(id)
		}

		coord, closeDB, err := newCoordinator(applyOpsRenameDBConfig)
		exitOnErr(err)
		defer closeDB()

		opts := namespace.RenameOptions{DropTarget: applyOpsDropTarget, StayTemp: applyOpsStayTemp}
		// a standalone replay is never itself replicated further, so no renameOpTime is
		// pre-assigned here.
		exitOnErr(coord.RenameForApplyOps(context.Background(), dbName, uuidToRename, source, target, opts, uuidToDrop, types.OptionalLogPosition{}))
	},
}

var rollbackRenameCmd = &cobra.Command{
	Use:   "rollback-rename <target> <uuid>",
	Short: "Rebind target to the current namespace of uuid",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		target, err := parseNamespace(args[0])
		exitOnErr(err)
		uuid, err := types.ParseCollectionID(args[1])
		exitOnErr(err)

		coord, closeDB, err := newCoordinator(rollbackRenameDBConfig)
		exitOnErr(err)
		defer closeDB()

		exitOnErr(coord.RenameForRollback(context.Background(), target, uuid))
	},
}

func init() {
	flag.DBConfig(renameCmd, &renameDBConfig)
	renameCmd.Flags().BoolVar(&renameDropTarget, "drop-target", false, "drop a pre-existing target collection")
	renameCmd.Flags().BoolVar(&renameStayTemp, "stay-temp", false, "preserve the temp flag across the rename")

	flag.DBConfig(applyOpsRenameCmd, &applyOpsRenameDBConfig)
	applyOpsRenameCmd.Flags().BoolVar(&applyOpsDropTarget, "drop-target", false, "drop a pre-existing target collection")
	applyOpsRenameCmd.Flags().BoolVar(&applyOpsStayTemp, "stay-temp", false, "preserve the temp flag across the rename")
	applyOpsRenameCmd.Flags().StringVar(&applyOpsUUIDToRename, "uuid-to-rename", "", "the collection UUID the log entry names as the source, if any")
	applyOpsRenameCmd.Flags().StringVar(&applyOpsUUIDToDrop, "uuid-to-drop", "", "the exact collection UUID to drop, if any")

	flag.DBConfig(rollbackRenameCmd, &rollbackRenameDBConfig)
}

func parseNamespace(s string) (types.Namespace, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return types.Namespace{}, fmt.Errorf("%q is not a valid db.collection namespace", s)
	}
	return types.NewNamespace(parts[0], parts[1]), nil
}

func newCoordinator(cfg dbcore.DBConfig) (*namespace.Coordinator, func(), error) {
	db, err := dbcore.ConnectPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	meta := dao.NewMetaDomain(db)
	tx := dbcore.NewTxImpl(db)
	coord := namespace.NewCoordinator(
		meta,
		tx,
		namespace.NewLoggingObserver(),
		namespace.NewInMemoryShardingState(),
		namespace.NewSinglePrimaryReplication(namespace.ReplicationModeReplSet),
		namespace.NoBackgroundOps{},
	)
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return coord, closeFn, nil
}

func exitOnErr(err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
