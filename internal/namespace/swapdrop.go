package namespace

import (
	"context"
	"fmt"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
)

// renameSwapDrop is component D: the same-database rename used when a target collides and the
// caller asked to drop it (spec.md §4.D). The two observer calls bracket the drop so a replay
// on another node sees exactly the user-requested operation.
func renameSwapDrop(ctx context.Context, tx dbmodel.ITransaction, meta dbmodel.IMetaDomain, observer Observer, bgops BackgroundOpsRegistry, source, target types.Namespace, sourceCol, targetCol *dbmodel.Collection, opts RenameOptions, applyOps *ApplyOpsContext) error {
	return WriteConflictRetry(ctx, tx, "renameCollectionSwapDrop", func(txCtx context.Context) error {
		sourceUUID, err := types.ParseCollectionID(sourceCol.UUID)
		if err != nil {
			return err
		}
		targetUUID, err := types.ParseCollectionID(targetCol.UUID)
		if err != nil {
			return err
		}

		var preAssigned types.OptionalLogPosition
		if applyOps != nil {
			preAssigned = applyOps.RenameOpTime
		}

		logPos, err := observer.PreRenameCollection(source, target, sourceUUID, targetUUID, targetCol.RecordCount, opts.StayTemp, preAssigned)
		if err != nil {
			return err
		}
		// spec.md §4.D step 2: in apply-ops mode the pre-assigned renameOpTime must be used
		// and the observer must not produce a log position. A violation is a fatal invariant.
		if applyOps != nil && preAssigned.Valid && logPos.Valid {
			return fmt.Errorf("%w: observer assigned a log position while one was pre-assigned", ErrInvariantViolation)
		}
		chosenLogPos := preAssigned
		if !chosenLogPos.Valid {
			chosenLogPos = logPos
		}
		_ = chosenLogPos // the position is what a real oplog writer would key the drop entry on

		// spec.md §4.D step 3: assert no background ops/index builds target the victim.
		if err := bgops.AssertNoBgOpInProgForNs(target); err != nil {
			return err
		}
		if err := bgops.AssertNoIndexBuildInProgForCollection(targetUUID); err != nil {
			return err
		}

		// spec.md §4.D step 4: drop target.
		if _, err := meta.CollectionDb(txCtx).DeleteByID(targetCol.ID); err != nil {
			return err
		}

		// spec.md §4.D step 5: rebind source to target, preserving stayTemp.
		name := target.Collection
		dbID := sourceCol.DatabaseID
		stayTemp := opts.StayTemp
		if err := meta.CollectionDb(txCtx).Update(sourceCol.ID, dbmodel.CollectionMutation{
			Name: &name, DatabaseID: &dbID, Temp: &stayTemp,
		}); err != nil {
			return err
		}

		// spec.md §4.D step 6.
		return observer.PostRenameCollection(source, target, sourceUUID, targetUUID, stayTemp)
	})
}
