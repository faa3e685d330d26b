package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
)

// Preconditions bundles the collaborators the checker (component A) needs, grounded on the
// existence/shardedness/replication checks threaded through ForkCollection and
// hardDeleteCollection in the teacher.
type Preconditions struct {
	Meta        dbmodel.IMetaDomain
	Sharding    ShardingState
	Replication ReplicationCoordinator
	BgOps       BackgroundOpsRegistry
}

// resolved carries the catalog rows the checker looked up, so downstream components don't
// re-query them.
type resolved struct {
	sourceDB  *dbmodel.Database
	sourceCol *dbmodel.Collection
	targetDB  *dbmodel.Database
	targetCol *dbmodel.Collection
}

// Check runs spec.md §4.A's ordered checks. targetExistsAllowed relaxes check 7's
// "NamespaceExists" failure the way the cross-database copier needs to (spec.md §4.F step 2
// handles a same-UUID pre-existing target itself, so the checker must let it through).
func (p *Preconditions) Check(ctx context.Context, source, target types.Namespace, opts RenameOptions, targetExistsAllowed bool) (*resolved, error) {
	// 1. primary check
	if p.Replication.WritesAreReplicated() && !p.Replication.CanAcceptWritesFor(source) {
		return nil, ErrNotPrimary
	}
	// 2. source not sharded, unless a test-only bypass is active -- a sharded source otherwise
	// requires the distributed two-phase path, out of scope here (spec.md §1 Non-goals, §4.A
	// check 2, §9 fault-injection point useRenameCollectionPathThroughConfigsvr).
	if p.Sharding.IsSharded(source) && !faultActive(FaultUseRenamePathThroughConfigServer) {
		return nil, ErrRequiresDistributedRename
	}
	// 3. replication parity
	if p.Replication.IsOplogDisabledFor(source) != p.Replication.IsOplogDisabledFor(target) {
		return nil, ErrIllegalOperation
	}
	// 4. source database exists, not drop-pending
	sourceDB, err := p.Meta.DatabaseDb(ctx).GetByName(source.Database)
	if err != nil {
		return nil, err
	}
	if sourceDB == nil || sourceDB.DropPending {
		return nil, ErrNamespaceNotFound
	}
	// 5. source resolves to a collection
	sourceCol, err := p.Meta.CollectionDb(ctx).GetByNamespace(sourceDB.ID, source.Collection)
	if err != nil {
		return nil, err
	}
	if sourceCol == nil {
		return nil, ErrNamespaceNotFound
	}
	if sourceCol.IsView {
		return nil, ErrCommandNotSupportedOnView
	}
	if sourceCol.DropPending {
		return nil, ErrNamespaceNotFound
	}
	// 6. no background op / index build in progress
	if err := p.BgOps.AssertNoBgOpInProgForNs(source); err != nil {
		return nil, err
	}
	sourceUUID, err := types.ParseCollectionID(sourceCol.UUID)
	if err != nil {
		return nil, err
	}
	if err := p.BgOps.AssertNoIndexBuildInProgForCollection(sourceUUID); err != nil {
		return nil, err
	}

	res := &resolved{sourceDB: sourceDB, sourceCol: sourceCol}

	// 7. target, if it resolves to a collection, must not be sharded, and must not collide
	// unless dropTarget or targetExistsAllowed.
	targetDB, err := p.Meta.DatabaseDb(ctx).GetByName(target.Database)
	if err != nil {
		return nil, err
	}
	res.targetDB = targetDB
	if targetDB != nil {
		targetCol, err := p.Meta.CollectionDb(ctx).GetByNamespace(targetDB.ID, target.Collection)
		if err != nil {
			return nil, err
		}
		if targetCol != nil {
			if targetCol.IsView {
				return nil, ErrNamespaceExists
			}
			if p.Sharding.IsSharded(target) {
				return nil, ErrIllegalOperation
			}
			if !targetExistsAllowed && !opts.DropTarget {
				return nil, ErrNamespaceExists
			}
			res.targetCol = targetCol
		}
	}
	return res, nil
}
