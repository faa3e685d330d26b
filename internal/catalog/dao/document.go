package dao

import (
	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"gorm.io/gorm"
)

type documentDb struct {
	db *gorm.DB
}

func NewDocumentDb(db *gorm.DB) dbmodel.IDocumentDb {
	return &documentDb{db: db}
}

// FetchBatch is the keyset-pagination primitive DocumentCursor is built on (spec.md §4.F step
// 10): documents are ordered by id ascending so that seeking back to afterID after a
// write-conflict retry reproduces the exact same batch boundary.
func (d *documentDb) FetchBatch(collectionID, afterID string, limit int) ([]dbmodel.Document, error) {
	var rows []dbmodel.Document
	q := d.db.Model(&dbmodel.Document{}).
		Where("collection_id = ?", collectionID).
		Order("id asc").
		Limit(limit)
	if afterID != "" {
		q = q.Where("id > ?", afterID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *documentDb) InsertBatch(docs []dbmodel.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return d.db.Create(&docs).Error
}

func (d *documentDb) CountByCollectionID(collectionID string) (int64, error) {
	var count int64
	err := d.db.Model(&dbmodel.Document{}).Where("collection_id = ?", collectionID).Count(&count).Error
	return count, err
}
