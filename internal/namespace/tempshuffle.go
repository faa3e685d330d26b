package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
)

// renameTempShuffle is component E: used only from the apply-ops path when the target already
// exists but the caller did not identify it as the collection to drop (spec.md §4.E). The
// target is moved aside -- not dropped -- under the database's exclusive lock (required for
// the unique-name-generation contract), so a later drop-by-UUID can occur. This sub-operation
// is internal and not itself reflected in the replicated log (no Observer call here), matching
// spec.md's "Replicate-writes is suppressed in this window".
func renameTempShuffle(ctx context.Context, tx dbmodel.ITransaction, meta dbmodel.IMetaDomain, targetCol *dbmodel.Collection) (newName string, err error) {
	err = WriteConflictRetry(ctx, tx, "renameCollectionTempShuffle", func(txCtx context.Context) error {
		generated, genErr := meta.CollectionDb(txCtx).MakeUniqueNamespace(targetCol.DatabaseID, "rename")
		if genErr != nil {
			return genErr
		}
		newName = generated
		stayTemp := true
		return meta.CollectionDb(txCtx).Update(targetCol.ID, dbmodel.CollectionMutation{
			Name: &newName, Temp: &stayTemp,
		})
	})
	return newName, err
}
