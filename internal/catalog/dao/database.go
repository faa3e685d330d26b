package dao

import (
	"errors"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type databaseDb struct {
	db *gorm.DB
}

func NewDatabaseDb(db *gorm.DB) dbmodel.IDatabaseDb {
	return &databaseDb{db: db}
}

func (d *databaseDb) GetByName(name string) (*dbmodel.Database, error) {
	var row dbmodel.Database
	err := d.db.Model(&dbmodel.Database{}).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *databaseDb) GetByID(id string) (*dbmodel.Database, error) {
	var row dbmodel.Database
	err := d.db.Model(&dbmodel.Database{}).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LockDatabase takes a SELECT ... FOR UPDATE row lock on the database's catalog entry, the
// stand-in for the spec's database-level intent-exclusive/exclusive lock (spec.md §4.B),
// grounded on dao/collection.go's LockCollection.
func (d *databaseDb) LockDatabase(name string) (*dbmodel.Database, error) {
	var row dbmodel.Database
	err := d.db.Model(&dbmodel.Database{}).
		Where("name = ?", name).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *databaseDb) Create(row *dbmodel.Database) error {
	return d.db.Create(row).Error
}

func (d *databaseDb) DeleteAll() error {
	return d.db.Where("1 = 1").Delete(&dbmodel.Database{}).Error
}
