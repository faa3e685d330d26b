package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
	"github.com/catalogdb/renamecoll/internal/logging"
)

// crossDBBatchSize is the number of documents the bulk-copy loop (spec.md §4.F step 10) copies
// per write unit. It is an unexported package variable, so only code inside this package (such
// as a test) can change it; no flag or configuration setting exposes it.
var crossDBBatchSize = 500

// renameCrossDatabase is component F: the cross-database copier (spec.md §4.F). It is the most
// intricate path because collections are database-scoped, so a rename across databases cannot
// rebind a catalog row in place -- it must materialize the contents into a new collection in
// the target database, promote it, and drop the original.
func renameCrossDatabase(
	ctx context.Context,
	tx dbmodel.ITransaction,
	meta dbmodel.IMetaDomain,
	observer Observer,
	bgops BackgroundOpsRegistry,
	locks *LockPlanner,
	source, target types.Namespace,
	sourceCol *dbmodel.Collection,
	opts RenameOptions,
) error {
	// step 1: locks per §4.B cross-database case.
	crossLocks, err := locks.AcquireCrossDatabase(ctx, source, target)
	if err != nil {
		return err
	}

	// step 2: target-exists handling.
	var targetDB *dbmodel.Database
	var targetCol *dbmodel.Collection
	err = tx.Transaction(ctx, func(txCtx context.Context) error {
		var e error
		targetDB, e = meta.DatabaseDb(txCtx).GetByName(target.Database)
		if e != nil {
			return e
		}
		if targetDB == nil {
			return nil
		}
		targetCol, e = meta.CollectionDb(txCtx).GetByNamespace(targetDB.ID, target.Collection)
		return e
	})
	if err != nil {
		return err
	}
	if targetCol != nil {
		if err := rejectViewNamespaces(nil, targetCol); err != nil {
			return err
		}
		if targetCol.UUID == sourceCol.UUID {
			// re-applying a completed rename: trivial success.
			return nil
		}
		if !opts.DropTarget {
			return ErrNamespaceExists
		}
	}

	// step 3: open/create target database if absent.
	if targetDB == nil {
		targetDB = &dbmodel.Database{ID: newCatalogID(), Name: target.Database}
		if err := tx.Transaction(ctx, func(txCtx context.Context) error {
			return meta.DatabaseDb(txCtx).Create(targetDB)
		}); err != nil {
			return err
		}
	}

	// step 4: generate a unique staging namespace inside the target database.
	var stagingName string
	if err := tx.Transaction(ctx, func(txCtx context.Context) error {
		var e error
		stagingName, e = meta.CollectionDb(txCtx).MakeUniqueNamespace(targetDB.ID, "renameCollection")
		return e
	}); err != nil {
		return err
	}
	staging := types.NewNamespace(target.Database, stagingName)

	// step 5: scope-guarded cleanup that drops the staging collection on any later failure.
	var stagingCol *dbmodel.Collection
	cleanupDismissed := false
	cleanup := func() {
		if cleanupDismissed || stagingCol == nil {
			return
		}
		if err := tx.Transaction(ctx, func(txCtx context.Context) error {
			_, e := meta.CollectionDb(txCtx).DeleteByID(stagingCol.ID)
			return e
		}); err != nil {
			logging.Warn("staging collection cleanup failed",
				logging.String("staging", staging.String()), logging.Err(err))
		}
	}
	defer cleanup()

	// step 6: create the staging collection, copying the source's durable options verbatim
	// except UUID, which is freshly generated.
	newUUID := types.NewCollectionID()
	stagingCol = &dbmodel.Collection{
		ID:             newCatalogID(),
		UUID:           newUUID.String(),
		DatabaseID:     targetDB.ID,
		Name:           stagingName,
		OptionsJsonStr: sourceCol.OptionsJsonStr,
		Temp:           true,
	}
	if err := WriteConflictRetry(ctx, tx, "renameCollectionCreateStaging", func(txCtx context.Context) error {
		return meta.CollectionDb(txCtx).Create(stagingCol)
	}); err != nil {
		return err
	}

	// step 7: copy index definitions, skipping the implicit _id index.
	var descriptors []dbmodel.IndexDescriptor
	if err := tx.Transaction(ctx, func(txCtx context.Context) error {
		sourceIndexes, e := meta.IndexDb(txCtx).ListReady(sourceCol.ID)
		if e != nil {
			return e
		}
		for _, idx := range sourceIndexes {
			if idx.Name == "_id_" {
				continue
			}
			descriptors = append(descriptors, dbmodel.IndexDescriptor{
				ID:           newCatalogID(),
				CollectionID: stagingCol.ID,
				Name:         idx.Name,
				KeySpecJSON:  idx.KeySpecJSON,
				Ready:        true,
			})
		}
		return nil
	}); err != nil {
		return err
	}

	// step 8: build indexes on the still-empty staging collection, before any document
	// insertion, in one write unit.
	if len(descriptors) > 0 {
		if err := WriteConflictRetry(ctx, tx, "renameCollectionBuildStagingIndexes", func(txCtx context.Context) error {
			return meta.IndexDb(txCtx).CreateBatch(descriptors)
		}); err != nil {
			return err
		}
	}

	// step 9: lock the staging collection's namespace (DowngradeToStaging does not release the
	// target-database lock).
	if err := crossLocks.DowngradeToStaging(ctx, staging); err != nil {
		return err
	}

	// step 10: bulk copy via a source cursor, in bounded batches, each inside a
	// write-conflict-retry write unit.
	if err := copyDocuments(ctx, tx, meta, sourceCol.ID, stagingCol.ID); err != nil {
		return err
	}

	// step 11: release source locks.
	crossLocks.ReleaseSource()

	// step 12: promote staging to target via the same-database rename path.
	if err := tx.Transaction(ctx, func(txCtx context.Context) error {
		current, e := meta.CollectionDb(txCtx).GetByNamespace(stagingCol.DatabaseID, stagingCol.Name)
		if e != nil {
			return e
		}
		if current != nil {
			stagingCol = current
		}
		return nil
	}); err != nil {
		return err
	}
	if targetCol != nil {
		if err := renameSwapDrop(ctx, tx, meta, observer, bgops, staging, target, stagingCol, targetCol, opts, nil); err != nil {
			return err
		}
	} else {
		if err := renameDirect(ctx, tx, meta, observer, staging, target, stagingCol, opts); err != nil {
			return err
		}
	}

	// step 13: dismiss the cleanup guard and drop the original source collection using the
	// apply-ops-tolerant drop path.
	cleanupDismissed = true
	return dropForApplyOps(ctx, tx, meta, sourceCol)
}

// copyDocuments is spec.md §4.F step 10's bulk-copy loop: a bounded-batch, write-conflict-retried
// keyset-pagination copy from sourceCollectionID to stagingCollectionID.
func copyDocuments(ctx context.Context, tx dbmodel.ITransaction, meta dbmodel.IMetaDomain, sourceCollectionID, stagingCollectionID string) error {
	cursor := NewDocumentCursor(meta.DocumentDb(ctx), sourceCollectionID, crossDBBatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batchStart := cursor.lastID
		cursor.Save()
		var batch []dbmodel.Document
		err := WriteConflictRetry(ctx, tx, "renameCollectionCopyToTmp", func(txCtx context.Context) error {
			// a retried attempt must resume exactly where the failed attempt began, not from
			// wherever a partially-applied previous attempt left the cursor.
			cursor.SeekExact(batchStart)

			fetched, fetchErr := cursor.NextBatch(txCtx)
			if fetchErr != nil {
				return fetchErr
			}
			if len(fetched) == 0 {
				batch = nil
				return nil
			}
			if ConsumeFault(FaultWriteConflictInCopyToTmp) {
				return ErrSimulatedWriteConflict
			}
			owned := make([]dbmodel.Document, len(fetched))
			for i, d := range fetched {
				// copy the current record into owned storage before the write unit commits and
				// the cursor is released for a yield, so storage-engine mutations during the
				// yield cannot invalidate it (spec.md §4.F step 10).
				payload := make([]byte, len(d.Payload))
				copy(payload, d.Payload)
				// documents row IDs are globally unique, not scoped per collection, so the copy
				// mints a fresh ID rather than reusing the source row's -- the source row still
				// exists until step 13 drops it.
				owned[i] = dbmodel.Document{ID: newCatalogID(), CollectionID: stagingCollectionID, Payload: payload}
			}
			if insertErr := meta.DocumentDb(txCtx).InsertBatch(owned); insertErr != nil {
				return insertErr
			}
			batch = fetched
			return nil
		})

		// Save/Restore bracket the commit regardless of outcome: a scope-guarded restore across
		// the yield point, itself tolerant of being invoked after a write-conflict retry.
		cursor.Restore()

		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		cursor.Advance(batch)
	}
}

// newCatalogID mints a fresh row identifier for catalog tables whose primary key is not the
// collection UUID itself (Database.ID, Collection.ID, IndexDescriptor.ID), grounded on the
// teacher's uuid.New().String() id-generation idiom.
func newCatalogID() string {
	return types.NewCollectionID().String()
}
