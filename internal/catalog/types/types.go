// Package types holds the identity and time primitives shared by the catalog and the
// rename subsystem: collection UUIDs and replication log positions.
package types

import (
	"math"

	"github.com/google/uuid"
)

// Timestamp is a Unix-epoch-seconds logical clock value used for catalog bookkeeping.
type Timestamp = int64

const MaxTimestamp = Timestamp(math.MaxInt64)

// CollectionID is a collection's immutable 128-bit identity. It is preserved across a
// same-database rename and regenerated across a cross-database rename.
type CollectionID uuid.UUID

func NewCollectionID() CollectionID {
	return CollectionID(uuid.New())
}

func NilCollectionID() CollectionID {
	return CollectionID(uuid.Nil)
}

func (id CollectionID) String() string {
	return uuid.UUID(id).String()
}

func (id CollectionID) IsNil() bool {
	return id == NilCollectionID()
}

func ParseCollectionID(s string) (CollectionID, error) {
	id, err := uuid.Parse(s)
	return CollectionID(id), err
}

func MustParseCollectionID(s string) CollectionID {
	id, err := ParseCollectionID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// LogPosition is a monotonically increasing identifier assigned to replicated operations by
// the Observer. A nil LogPosition (see OptionalLogPosition) means "no log position assigned".
type LogPosition int64

// OptionalLogPosition models the spec's tagged-optional log position: ApplyOpsContext.renameOpTime
// is present only in replay mode, and the observer must not assign one when it is already present.
type OptionalLogPosition struct {
	Value LogPosition
	Valid bool
}

func SomeLogPosition(v LogPosition) OptionalLogPosition {
	return OptionalLogPosition{Value: v, Valid: true}
}

// OptionalCollectionID models the spec's tagged-optional UUID (e.g. ApplyOpsContext.uuidToDrop).
type OptionalCollectionID struct {
	Value CollectionID
	Valid bool
}

func SomeCollectionID(v CollectionID) OptionalCollectionID {
	return OptionalCollectionID{Value: v, Valid: true}
}

// Namespace is a fully-qualified (database, collection) pair, totally ordered by ResourceID
// for deterministic lock acquisition (spec.md §4.B).
type Namespace struct {
	Database   string
	Collection string
}

func NewNamespace(database, collection string) Namespace {
	return Namespace{Database: database, Collection: collection}
}

func (ns Namespace) String() string {
	return ns.Database + "." + ns.Collection
}

// ResourceID is the stable lock-resource identifier the lock planner orders on. It is simply
// the full dotted name: lexicographic order over it is a valid, deterministic total order.
func (ns Namespace) ResourceID() string {
	return ns.String()
}

func (ns Namespace) IsValid() bool {
	return ns.Database != "" && ns.Collection != ""
}

func (ns Namespace) IsSystemViews() bool {
	return ns.Collection == "system.views"
}

func (ns Namespace) IsOplog() bool {
	return ns.Database == "local" && ns.Collection == "oplog.rs"
}

func (ns Namespace) IsServerConfiguration() bool {
	return ns.Database == "admin" && ns.Collection == "system.version"
}
