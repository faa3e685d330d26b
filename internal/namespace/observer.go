package namespace

import (
	"sync/atomic"

	"github.com/catalogdb/renamecoll/internal/catalog/types"
	"github.com/catalogdb/renamecoll/internal/logging"
)

// Observer is the component that transcribes catalog-mutating operations into replicated log
// entries (spec.md §6, §9 "Observer polymorphism"). Exactly one of OnRenameCollection or the
// PreRenameCollection/PostRenameCollection pair is called per successful user-level rename
// (spec.md §3 invariants, §8 invariant 4).
type Observer interface {
	// OnRenameCollection is used by the direct renamer (component C): no pre-existing target
	// was dropped.
	OnRenameCollection(source, target types.Namespace, sourceUUID types.CollectionID, droppedTargetUUID types.OptionalCollectionID, droppedRecordCount int64, stayTemp bool) error

	// PreRenameCollection/PostRenameCollection bracket the swap-drop renamer's (component D)
	// drop of a colliding target, so a replaying secondary observes exactly the user-requested
	// operation. PreRenameCollection returns the log position to use for the drop, unless
	// preAssignedLogPos is already set (apply-ops mode), in which case it must return an
	// invalid OptionalLogPosition (spec.md §4.D step 2).
	PreRenameCollection(source, target types.Namespace, sourceUUID, targetUUID types.CollectionID, numRecords int64, stayTemp bool, preAssignedLogPos types.OptionalLogPosition) (types.OptionalLogPosition, error)
	PostRenameCollection(source, target types.Namespace, sourceUUID, targetUUID types.CollectionID, stayTemp bool) error
}

// LoggingObserver is the default Observer: it logs each call and hands out monotonically
// increasing in-memory log positions, standing in for the teacher's oplog/lineage-file
// bookkeeping (SPEC_FULL.md §11.3).
type LoggingObserver struct {
	counter int64
}

func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{}
}

func (o *LoggingObserver) nextLogPosition() types.LogPosition {
	return types.LogPosition(atomic.AddInt64(&o.counter, 1))
}

func (o *LoggingObserver) OnRenameCollection(source, target types.Namespace, sourceUUID types.CollectionID, droppedTargetUUID types.OptionalCollectionID, droppedRecordCount int64, stayTemp bool) error {
	logging.Info("onRenameCollection",
		logging.String("source", source.String()),
		logging.String("target", target.String()),
		logging.String("sourceUUID", sourceUUID.String()),
		logging.Bool("stayTemp", stayTemp))
	return nil
}

func (o *LoggingObserver) PreRenameCollection(source, target types.Namespace, sourceUUID, targetUUID types.CollectionID, numRecords int64, stayTemp bool, preAssignedLogPos types.OptionalLogPosition) (types.OptionalLogPosition, error) {
	logging.Info("preRenameCollection",
		logging.String("source", source.String()),
		logging.String("target", target.String()),
		logging.Int("numRecords", int(numRecords)))
	if preAssignedLogPos.Valid {
		// apply-ops mode: the caller already has a log position, the observer must not
		// invent a second one (spec.md §4.D step 2).
		return types.OptionalLogPosition{}, nil
	}
	return types.SomeLogPosition(o.nextLogPosition()), nil
}

func (o *LoggingObserver) PostRenameCollection(source, target types.Namespace, sourceUUID, targetUUID types.CollectionID, stayTemp bool) error {
	logging.Info("postRenameCollection",
		logging.String("source", source.String()),
		logging.String("target", target.String()))
	return nil
}
