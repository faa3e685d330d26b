package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
)

// renameDirect is component C: the in-place atomic rebind used when source and target share a
// database and no pre-existing target collides (spec.md §4.C).
func renameDirect(ctx context.Context, tx dbmodel.ITransaction, meta dbmodel.IMetaDomain, observer Observer, source, target types.Namespace, sourceCol *dbmodel.Collection, opts RenameOptions) error {
	return WriteConflictRetry(ctx, tx, "renameCollection", func(txCtx context.Context) error {
		name := target.Collection
		dbID := sourceCol.DatabaseID
		stayTemp := opts.StayTemp
		if err := meta.CollectionDb(txCtx).Update(sourceCol.ID, dbmodel.CollectionMutation{
			Name: &name, DatabaseID: &dbID, Temp: &stayTemp,
		}); err != nil {
			return err
		}
		sourceUUID, err := types.ParseCollectionID(sourceCol.UUID)
		if err != nil {
			return err
		}
		return observer.OnRenameCollection(source, target, sourceUUID, types.OptionalCollectionID{}, 0, stayTemp)
	})
}
