package dao

import (
	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type namespaceLockDb struct {
	db *gorm.DB
}

func NewNamespaceLockDb(db *gorm.DB) dbmodel.INamespaceLockDb {
	return &namespaceLockDb{db: db}
}

// LockNamespace upserts the lock row for resourceID (idempotent: a concurrent first-use race
// is resolved by ON CONFLICT DO NOTHING) and then takes a SELECT ... FOR UPDATE on it, giving
// the lock planner a stable lockable identity for namespaces that may not yet name a live
// collection (dbmodel.NamespaceLock's doc comment explains why this is needed).
func (n *namespaceLockDb) LockNamespace(resourceID string) error {
	if err := n.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dbmodel.NamespaceLock{ResourceID: resourceID}).Error; err != nil {
		return err
	}
	var row dbmodel.NamespaceLock
	return n.db.Model(&dbmodel.NamespaceLock{}).
		Where("resource_id = ?", resourceID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&row).Error
}
