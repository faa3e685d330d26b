package dao

import (
	"errors"
	"fmt"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/logging"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type collectionDb struct {
	db *gorm.DB
}

func NewCollectionDb(db *gorm.DB) dbmodel.ICollectionDb {
	return &collectionDb{db: db}
}

func (c *collectionDb) GetByNamespace(databaseID, name string) (*dbmodel.Collection, error) {
	var row dbmodel.Collection
	err := c.db.Model(&dbmodel.Collection{}).
		Where("database_id = ? AND name = ?", databaseID, name).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *collectionDb) GetByUUID(uuid string) (*dbmodel.Collection, error) {
	var row dbmodel.Collection
	err := c.db.Model(&dbmodel.Collection{}).Where("uuid = ?", uuid).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LockCollection takes a row lock on the collection's catalog entry (SELECT ... FOR UPDATE),
// grounded verbatim on dao/collection.go's LockCollection. Returns (nil, nil) when the
// collection does not exist so callers distinguish "locked but absent" from a query error.
func (c *collectionDb) LockCollection(id string) (*dbmodel.Collection, error) {
	var rows []dbmodel.Collection
	err := c.db.Model(&dbmodel.Collection{}).
		Where("id = ?", id).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *collectionDb) Create(row *dbmodel.Collection) error {
	return c.db.Create(row).Error
}

// Update applies only the non-nil fields of m, the same generateCollectionUpdatesWithoutID
// partial-update idiom the teacher's collectionDb.Update uses, so a rename never clobbers
// unrelated catalog state (options, record count, etc.) it wasn't asked to touch.
func (c *collectionDb) Update(id string, m dbmodel.CollectionMutation) error {
	updates := map[string]interface{}{}
	if m.DatabaseID != nil {
		updates["database_id"] = *m.DatabaseID
	}
	if m.Name != nil {
		updates["name"] = *m.Name
	}
	if m.Temp != nil {
		updates["temp"] = *m.Temp
	}
	if m.DropPending != nil {
		updates["drop_pending"] = *m.DropPending
	}
	if m.RecordCount != nil {
		updates["record_count"] = *m.RecordCount
	}
	if len(updates) == 0 {
		return nil
	}
	logging.Info("updating collection catalog row", logging.String("id", id))
	err := c.db.Model(&dbmodel.Collection{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		logging.Error("collection update failed", logging.Err(err))
		return err
	}
	return nil
}

func (c *collectionDb) DeleteByID(id string) (int, error) {
	res := c.db.Where("id = ?", id).Delete(&dbmodel.Collection{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// MakeUniqueNamespace generates a `tmp<hex>.<suffix>` collection name within databaseID,
// matching spec.md §6's staging name pattern. Each candidate is looked up first; if a
// collection in databaseID already has that name, a new candidate is generated, up to
// maxAttempts times. A unique-constraint error on a later insert is not retried here.
func (c *collectionDb) MakeUniqueNamespace(databaseID, suffix string) (string, error) {
	const maxAttempts = 10
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("tmp%s.%s", randomHex(5), suffix)
		existing, err := c.GetByNamespace(databaseID, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique namespace after %d attempts", maxAttempts)
}

func randomHex(n int) string {
	id := uuid.New()
	s := id.String()
	// strip hyphens, take the first n hex characters -- a 5-char collision-avoidance token
	// as spec.md §6 describes.
	hex := ""
	for _, r := range s {
		if r != '-' {
			hex += string(r)
		}
		if len(hex) == n {
			break
		}
	}
	return hex
}
