package namespace

import "github.com/catalogdb/renamecoll/internal/catalog/types"

// ReplicationMode mirrors the spec's getReplicationMode() collaborator result.
type ReplicationMode int

const (
	ReplicationModeNone ReplicationMode = iota
	ReplicationModeReplSet
)

// ReplicationCoordinator is the collaborator interface from spec.md §6.
type ReplicationCoordinator interface {
	CanAcceptWritesFor(ns types.Namespace) bool
	IsOplogDisabledFor(ns types.Namespace) bool
	GetReplicationMode() ReplicationMode
	WritesAreReplicated() bool
}

// SinglePrimaryReplication is a trivial stand-in for a single-node (or already-primary)
// deployment: it always accepts writes and always replicates, unless replication is switched
// off entirely (ReplicationModeNone), matching the "replicated/unreplicated" distinction
// spec.md §4.A check 3 requires.
type SinglePrimaryReplication struct {
	Mode ReplicationMode
}

func NewSinglePrimaryReplication(mode ReplicationMode) *SinglePrimaryReplication {
	return &SinglePrimaryReplication{Mode: mode}
}

func (r *SinglePrimaryReplication) CanAcceptWritesFor(types.Namespace) bool {
	return true
}

func (r *SinglePrimaryReplication) IsOplogDisabledFor(ns types.Namespace) bool {
	return r.Mode == ReplicationModeNone
}

func (r *SinglePrimaryReplication) GetReplicationMode() ReplicationMode {
	return r.Mode
}

func (r *SinglePrimaryReplication) WritesAreReplicated() bool {
	return r.Mode == ReplicationModeReplSet
}
