package dbmodel

import "context"

// Database is the durable-catalog row for a database, grounded on dbmodel.Database in the
// teacher. DropPending models the spec's "drop-pending" marker state (spec.md §3 Namespace
// predicate isDropPending).
type Database struct {
	ID          string `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name;not null;uniqueIndex"`
	DropPending bool   `gorm:"column:drop_pending;not null;default:false"`
}

func (Database) TableName() string { return "databases" }

//go:generate mockery --name=IDatabaseDb
type IDatabaseDb interface {
	GetByName(name string) (*Database, error)
	GetByID(id string) (*Database, error)
	// LockDatabase takes a row lock on the database's catalog entry, standing in for the
	// spec's database-level intent-exclusive/exclusive lock (spec.md §4.B).
	LockDatabase(name string) (*Database, error)
	Create(db *Database) error
	DeleteAll() error
}

// ITransaction is the write-unit primitive (spec.md §6): fn runs inside one durable
// transaction and its effects commit atomically, or none of them apply.
//
//go:generate mockery --name=ITransaction
type ITransaction interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

//go:generate mockery --name=IMetaDomain
type IMetaDomain interface {
	DatabaseDb(ctx context.Context) IDatabaseDb
	CollectionDb(ctx context.Context) ICollectionDb
	IndexDb(ctx context.Context) IIndexDb
	DocumentDb(ctx context.Context) IDocumentDb
	NamespaceLockDb(ctx context.Context) INamespaceLockDb
}

// NamespaceLock is a one-row-per-resource lock table: the lock planner (spec.md §4.B) needs to
// lock a *namespace* (e.g. a prospective target that may not yet name a live collection), not
// just an existing collection's catalog row, so LockCollection's "SELECT ... FOR UPDATE on an
// existing row" trick doesn't generalize on its own. A NamespaceLock row is created idempotently
// on first use and then row-locked, giving every namespace a stable lockable identity
// regardless of whether a collection currently occupies it.
type NamespaceLock struct {
	ResourceID string `gorm:"column:resource_id;primaryKey"`
}

func (NamespaceLock) TableName() string { return "namespace_locks" }

//go:generate mockery --name=INamespaceLockDb
type INamespaceLockDb interface {
	// LockNamespace ensures a lock row exists for resourceID and takes a row lock on it.
	LockNamespace(resourceID string) error
}
