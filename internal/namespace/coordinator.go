package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
)

// Coordinator wires components A-F behind the four entry points spec.md §4.G names (component
// G). It holds no state of its own beyond its collaborators, mirroring the teacher's catalog
// coordinator layer that sits above table_catalog.go's per-table operations.
type Coordinator struct {
	Meta        dbmodel.IMetaDomain
	Tx          dbmodel.ITransaction
	Observer    Observer
	Sharding    ShardingState
	Replication ReplicationCoordinator
	BgOps       BackgroundOpsRegistry
	Locks       *LockPlanner
}

func NewCoordinator(meta dbmodel.IMetaDomain, tx dbmodel.ITransaction, observer Observer, sharding ShardingState, replication ReplicationCoordinator, bgops BackgroundOpsRegistry) *Coordinator {
	return &Coordinator{
		Meta:        meta,
		Tx:          tx,
		Observer:    observer,
		Sharding:    sharding,
		Replication: replication,
		BgOps:       bgops,
		Locks:       NewLockPlanner(meta),
	}
}

func (c *Coordinator) preconditions() *Preconditions {
	return &Preconditions{Meta: c.Meta, Sharding: c.Sharding, Replication: c.Replication, BgOps: c.BgOps}
}

// rejectViewNamespaces is the original's checkTargetAndSourceNamespaceAreNotAView helper,
// used by validateAndRun and by the cross-database path's target-exists handling (supplemented
// feature, SPEC_FULL.md §12).
func rejectViewNamespaces(sourceCol, targetCol *dbmodel.Collection) error {
	if sourceCol != nil && sourceCol.IsView {
		return ErrCommandNotSupportedOnView
	}
	if targetCol != nil && targetCol.IsView {
		return ErrNamespaceExists
	}
	return nil
}

// validateAndRun is the common validating entry point spec.md §4.G describes: beyond the
// per-component precondition checks, it enforces namespace validity, the oplog
// replicated/unreplicated boundary, and that the server-configuration collection is never the
// source. It does not check whether either namespace is user-writable.
func (c *Coordinator) validateAndRun(ctx context.Context, source, target types.Namespace, opts RenameOptions, applyOps *ApplyOpsContext) error {
	if !source.IsValid() || !target.IsValid() {
		return ErrInvalidNamespace
	}
	if source.IsServerConfiguration() {
		return ErrIllegalOperation
	}
	if source.IsOplog() != target.IsOplog() {
		return ErrIllegalOperation
	}
	if source.IsOplog() && c.Replication.WritesAreReplicated() {
		return ErrIllegalOperation
	}

	targetExistsAllowed := source.Database != target.Database
	res, err := c.preconditions().Check(ctx, source, target, opts, targetExistsAllowed)
	if err != nil {
		return err
	}
	if err := rejectViewNamespaces(res.sourceCol, res.targetCol); err != nil {
		return err
	}

	if source.Database == target.Database {
		return c.runSameDatabase(ctx, source, target, res, opts, applyOps)
	}
	return renameCrossDatabase(ctx, c.Tx, c.Meta, c.Observer, c.BgOps, c.Locks, source, target, res.sourceCol, opts)
}

func (c *Coordinator) runSameDatabase(ctx context.Context, source, target types.Namespace, res *resolved, opts RenameOptions, applyOps *ApplyOpsContext) error {
	var lockErr error
	if applyOps != nil {
		_, lockErr = c.Locks.AcquireSameDatabaseApplyOps(ctx, source.Database)
	} else {
		_, lockErr = c.Locks.AcquireSameDatabaseNormal(ctx, source, target)
	}
	if lockErr != nil {
		return lockErr
	}

	if res.targetCol == nil {
		return renameDirect(ctx, c.Tx, c.Meta, c.Observer, source, target, res.sourceCol, opts)
	}

	if applyOps != nil {
		// apply-ops mode with a colliding target that wasn't identified as the collection to
		// drop: move it aside instead of dropping it outright (component E).
		if !applyOps.UUIDToDrop.Valid || applyOps.UUIDToDrop.Value.String() != res.targetCol.UUID {
			if _, err := renameTempShuffle(ctx, c.Tx, c.Meta, res.targetCol); err != nil {
				return err
			}
			return renameDirect(ctx, c.Tx, c.Meta, c.Observer, source, target, res.sourceCol, opts)
		}
	}
	return renameSwapDrop(ctx, c.Tx, c.Meta, c.Observer, c.BgOps, source, target, res.sourceCol, res.targetCol, opts, applyOps)
}

// Rename is the spec.md §4.G `rename` entry point: rejects drop-pending sources and views,
// dispatches to the same-database or cross-database path based on source.db == target.db.
func (c *Coordinator) Rename(ctx context.Context, source, target types.Namespace, opts RenameOptions) error {
	return c.validateAndRun(ctx, source, target, opts, nil)
}

// RenameForApplyOps is the spec.md §4.G `renameForApplyOps` entry point: dbName plus a command
// document's parsed from/to/dropTarget/stayTemp/uuidToRename, used when replaying the
// replicated log on a secondary.
func (c *Coordinator) RenameForApplyOps(ctx context.Context, dbName string, uuidToRename types.OptionalCollectionID, parsedSource, parsedTarget types.Namespace, opts RenameOptions, uuidToDrop types.OptionalCollectionID, preAssignedLogPos types.OptionalLogPosition) error {
	// spec.md §7 BadValue: "renameOpTime supplied while writes are replicated". The original
	// (rename_collection.cpp) only checks this one direction -- a non-replicated apply-ops call
	// with no renameOpTime at all (e.g. §4.D step 2 never applying because there's no target
	// collision) is not itself an error.
	if preAssignedLogPos.Valid && c.Replication.WritesAreReplicated() {
		return ErrBadValue
	}

	source := parsedSource
	if uuidToRename.Valid {
		if resolvedCol, err := c.Meta.CollectionDb(ctx).GetByUUID(uuidToRename.Value.String()); err == nil && resolvedCol != nil {
			db, dbErr := c.resolveDatabaseByID(ctx, resolvedCol.DatabaseID)
			if dbErr == nil && db != nil {
				resolvedNS := types.NewNamespace(db.Name, resolvedCol.Name)
				// supplemented feature (SPEC_FULL.md §12): if the resolved source already
				// matches the parsed target, this exact rename was already applied earlier in
				// the log -- short-circuit before taking any locks.
				if resolvedNS == parsedTarget {
					return nil
				}
				source = resolvedNS
			}
		}
	}

	sourceDB, err := c.Meta.DatabaseDb(ctx).GetByName(source.Database)
	if err != nil {
		return err
	}
	var sourceCol *dbmodel.Collection
	if sourceDB != nil {
		sourceCol, err = c.Meta.CollectionDb(ctx).GetByNamespace(sourceDB.ID, source.Collection)
		if err != nil {
			return err
		}
	}
	if sourceDB == nil || sourceDB.DropPending || sourceCol == nil || sourceCol.DropPending {
		// the source no longer exists or is drop-pending: downgrade to a bare drop, but only
		// when the caller actually asked for one (dropTarget or uuidToDrop) -- otherwise this
		// is a genuine NamespaceNotFound, not a silent no-op (spec.md §4.G).
		if uuidToDrop.Valid {
			return c.dropByUUID(ctx, uuidToDrop.Value)
		}
		if opts.DropTarget {
			return c.dropByNamespace(ctx, parsedTarget)
		}
		return ErrNamespaceNotFound
	}

	applyOps := &ApplyOpsContext{UUIDToDrop: uuidToDrop, RenameOpTime: preAssignedLogPos}
	return c.validateAndRun(ctx, source, parsedTarget, opts, applyOps)
}

// RenameForRollback is the spec.md §4.G `renameForRollback` entry point: looks up uuid's
// current namespace (must exist, same database as target) and performs an in-place
// same-database rename with default options.
func (c *Coordinator) RenameForRollback(ctx context.Context, target types.Namespace, uuid types.CollectionID) error {
	col, err := c.Meta.CollectionDb(ctx).GetByUUID(uuid.String())
	if err != nil {
		return err
	}
	if col == nil {
		return ErrNamespaceNotFound
	}
	db, err := c.resolveDatabaseByID(ctx, col.DatabaseID)
	if err != nil {
		return err
	}
	if db == nil {
		return ErrNamespaceNotFound
	}
	if db.Name != target.Database {
		// rollback assumes the rename being undone was same-database; a cross-database rename
		// has no rollback path here (DESIGN.md Open Question decision).
		return ErrCrossDatabaseRollbackUnsupported
	}
	source := types.NewNamespace(db.Name, col.Name)
	return c.validateAndRun(ctx, source, target, RenameOptions{}, nil)
}

// RenameIfUnchanged is the spec.md §4.G `renameIfUnchanged` entry point: after taking the
// target-database row lock, it compares target's durable options (minus UUID) to
// originalOptions and the names of target's ready indexes, as a set, to originalIndexNames,
// and fails ErrCommandFailed if either differs. Index key specs are not compared.
func (c *Coordinator) RenameIfUnchanged(ctx context.Context, source, target types.Namespace, dropTarget, stayTemp bool, originalIndexNames []string, originalOptions string) error {
	targetDB, err := c.Meta.DatabaseDb(ctx).LockDatabase(target.Database)
	if err != nil {
		return err
	}
	if targetDB != nil {
		targetCol, err := c.Meta.CollectionDb(ctx).GetByNamespace(targetDB.ID, target.Collection)
		if err != nil {
			return err
		}
		if targetCol != nil {
			if !dbmodel.OptionsEqualIgnoringUUID(targetCol.OptionsJsonStr, originalOptions) {
				return ErrCommandFailed
			}
			currentIndexes, err := c.Meta.IndexDb(ctx).ListReady(targetCol.ID)
			if err != nil {
				return err
			}
			if !sameIndexNameSet(currentIndexes, originalIndexNames) {
				return ErrCommandFailed
			}
		}
	}
	return c.validateAndRun(ctx, source, target, RenameOptions{DropTarget: dropTarget, StayTemp: stayTemp}, nil)
}

func sameIndexNameSet(current []dbmodel.IndexDescriptor, originalNames []string) bool {
	if len(current) != len(originalNames) {
		return false
	}
	seen := make(map[string]bool, len(originalNames))
	for _, n := range originalNames {
		seen[n] = true
	}
	for _, idx := range current {
		if !seen[idx.Name] {
			return false
		}
	}
	return true
}

func (c *Coordinator) resolveDatabaseByID(ctx context.Context, databaseID string) (*dbmodel.Database, error) {
	return c.Meta.DatabaseDb(ctx).GetByID(databaseID)
}

// dropByUUID and dropByNamespace are the apply-ops degrade-to-bare-drop path (supplemented
// feature, SPEC_FULL.md §12): dropCollectionForApplyOps in the original.
func (c *Coordinator) dropByUUID(ctx context.Context, uuid types.CollectionID) error {
	col, err := c.Meta.CollectionDb(ctx).GetByUUID(uuid.String())
	if err != nil {
		return err
	}
	if col == nil {
		return nil
	}
	return dropForApplyOps(ctx, c.Tx, c.Meta, col)
}

func (c *Coordinator) dropByNamespace(ctx context.Context, ns types.Namespace) error {
	db, err := c.Meta.DatabaseDb(ctx).GetByName(ns.Database)
	if err != nil {
		return err
	}
	if db == nil {
		return nil
	}
	col, err := c.Meta.CollectionDb(ctx).GetByNamespace(db.ID, ns.Collection)
	if err != nil {
		return err
	}
	if col == nil {
		return nil
	}
	return dropForApplyOps(ctx, c.Tx, c.Meta, col)
}

// dropForApplyOps tolerates the collection already being gone (idempotent replay), rather than
// erroring, and tolerates system-looking collection names -- the same drop path the
// cross-database copier uses to remove its promoted-from source (spec.md §4.F step 13,
// supplemented feature SPEC_FULL.md §12).
func dropForApplyOps(ctx context.Context, tx dbmodel.ITransaction, meta dbmodel.IMetaDomain, col *dbmodel.Collection) error {
	if col == nil {
		return nil
	}
	return WriteConflictRetry(ctx, tx, "dropCollectionForApplyOps", func(txCtx context.Context) error {
		_, err := meta.CollectionDb(txCtx).DeleteByID(col.ID)
		return err
	})
}
