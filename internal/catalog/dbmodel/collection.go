package dbmodel

// Collection is the durable-catalog row for a collection, grounded on dbmodel.Collection in
// the teacher. UUID is the spec's CollectionId (spec.md §3): immutable across a same-database
// rename, regenerated across a cross-database rename. OptionsJsonStr is the opaque
// "collection options" document (spec.md §3 CollectionHandle.options).
type Collection struct {
	ID             string `gorm:"column:id;primaryKey"`
	UUID           string `gorm:"column:uuid;not null;uniqueIndex"`
	DatabaseID     string `gorm:"column:database_id;not null;index:idx_db_name,unique"`
	Name           string `gorm:"column:name;not null;index:idx_db_name,unique"`
	OptionsJsonStr string `gorm:"column:options_json_str"`
	Temp           bool   `gorm:"column:temp;not null;default:false"`
	DropPending    bool   `gorm:"column:drop_pending;not null;default:false"`
	RecordCount    int64  `gorm:"column:record_count;not null;default:0"`
	IsView         bool   `gorm:"column:is_view;not null;default:false"`
	Sharded        bool   `gorm:"column:sharded;not null;default:false"`
	Replicated     bool   `gorm:"column:replicated;not null;default:true"`
}

func (Collection) TableName() string { return "collections" }

// CollectionMutation is a partial update: only non-nil fields are written, mirroring
// collectionDb.Update's generateCollectionUpdatesWithoutID pattern so a rename never
// clobbers unrelated catalog state.
type CollectionMutation struct {
	DatabaseID  *string
	Name        *string
	Temp        *bool
	DropPending *bool
	RecordCount *int64
}

//go:generate mockery --name=ICollectionDb
type ICollectionDb interface {
	GetByNamespace(databaseID, name string) (*Collection, error)
	GetByUUID(uuid string) (*Collection, error)
	// LockCollection takes a row lock (SELECT ... FOR UPDATE) on the collection's catalog
	// entry, standing in for the spec's collection-level exclusive/shared lock (spec.md §4.B).
	// Returns nil, nil if the collection does not exist (so callers can distinguish "locked
	// but absent" from a query error).
	LockCollection(id string) (*Collection, error)
	Create(c *Collection) error
	Update(id string, m CollectionMutation) error
	DeleteByID(id string) (int, error)
	// MakeUniqueNamespace generates a `tmp<hex>.<suffix>` namespace within databaseID that
	// does not currently collide with a live collection, generating a new candidate while the
	// current one is already taken (spec.md §6 "Staging name pattern").
	MakeUniqueNamespace(databaseID, suffix string) (string, error)
}

// OptionsEqualIgnoringUUID compares two collection-options documents the way
// renameIfUnchanged needs to (spec.md §4.G): element-wise equal except for the UUID they embed.
// Grounded on the original's CollectionOptions::toBSON(...).removeField("uuid") pattern
// (supplemented feature, SPEC_FULL.md §12).
func OptionsEqualIgnoringUUID(a, b string) bool {
	return stripUUIDField(a) == stripUUIDField(b)
}

// stripUUIDField is a deliberately minimal JSON-agnostic comparator: options documents in this
// rewrite never embed "uuid" as anything but a top-level, quoted scalar, so a literal substring
// strip is sufficient and avoids pulling in a JSON-diff dependency for one comparison.
func stripUUIDField(doc string) string {
	const key = `"uuid"`
	start := indexOf(doc, key)
	if start < 0 {
		return doc
	}
	end := indexOf(doc[start:], ",")
	if end < 0 {
		end = indexOf(doc[start:], "}")
		if end < 0 {
			return doc
		}
	}
	return doc[:start] + doc[start+end+1:]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// IndexDescriptor is a serialized index definition copied verbatim during a cross-database
// rename (spec.md §4.F step 7-8).
type IndexDescriptor struct {
	ID           string `gorm:"column:id;primaryKey"`
	CollectionID string `gorm:"column:collection_id;not null;index"`
	Name         string `gorm:"column:name;not null"`
	KeySpecJSON  string `gorm:"column:key_spec_json;not null"`
	Ready        bool   `gorm:"column:ready;not null;default:false"`
}

func (IndexDescriptor) TableName() string { return "index_descriptors" }

// EqualityKey returns a descriptor-equality key disregarding the internal ID, for the index-set
// comparison in spec.md §8 invariant 5.
func (d IndexDescriptor) EqualityKey() string {
	return d.Name + "\x00" + d.KeySpecJSON
}

//go:generate mockery --name=IIndexDb
type IIndexDb interface {
	ListReady(collectionID string) ([]IndexDescriptor, error)
	CreateBatch(descriptors []IndexDescriptor) error
}

// Document is an opaque catalog document copied verbatim (not re-validated) during a
// cross-database rename's bulk-copy phase (spec.md §4.F step 10).
type Document struct {
	ID           string `gorm:"column:id;primaryKey"`
	CollectionID string `gorm:"column:collection_id;not null;index"`
	Payload      []byte `gorm:"column:payload"`
}

func (Document) TableName() string { return "documents" }

//go:generate mockery --name=IDocumentDb
type IDocumentDb interface {
	// FetchBatch returns up to limit documents of collectionID with ID > afterID, ordered by
	// ID ascending -- the keyset-pagination primitive DocumentCursor is built on.
	FetchBatch(collectionID, afterID string, limit int) ([]Document, error)
	InsertBatch(docs []Document) error
	CountByCollectionID(collectionID string) (int64, error)
}
