package dao

import (
	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"gorm.io/gorm"
)

type indexDb struct {
	db *gorm.DB
}

func NewIndexDb(db *gorm.DB) dbmodel.IIndexDb {
	return &indexDb{db: db}
}

// ListReady returns the finished (ready) indexes of a collection, ordered by name, excluding
// none here -- the spec's "skip the _id index" rule (spec.md §4.F step 7) is applied by the
// caller since "_id" is a naming convention, not a catalog property.
func (i *indexDb) ListReady(collectionID string) ([]dbmodel.IndexDescriptor, error) {
	var rows []dbmodel.IndexDescriptor
	err := i.db.Model(&dbmodel.IndexDescriptor{}).
		Where("collection_id = ? AND ready = ?", collectionID, true).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (i *indexDb) CreateBatch(descriptors []dbmodel.IndexDescriptor) error {
	if len(descriptors) == 0 {
		return nil
	}
	return i.db.Create(&descriptors).Error
}
