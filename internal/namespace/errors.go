// Package namespace implements the collection-rename subsystem: given a source and target
// namespace it atomically rebinds the target name to the source collection's contents and
// identity, coordinating locks, write-conflict retry, and replica propagation. Grounded on
// go/pkg/sysdb/coordinator/table_catalog.go in the teacher.
package namespace

import "errors"

// Error kinds, one sentinel per row of spec.md §7, grouped in the style of
// pkg/common/errors.go.
var (
	ErrNotPrimary                = errors.New("not primary for source namespace")
	ErrNamespaceNotFound         = errors.New("namespace not found")
	ErrNamespaceExists           = errors.New("target namespace exists")
	ErrCommandNotSupportedOnView = errors.New("command not supported on a view")
	ErrIllegalOperation          = errors.New("illegal operation")
	ErrInvalidNamespace          = errors.New("invalid namespace")
	ErrCommandFailed             = errors.New("command failed")
	ErrBadValue                  = errors.New("bad value")
	ErrTypeMismatch              = errors.New("type mismatch")

	// ErrInvariantViolation marks a condition treated as a fatal programming error: renameSwapDrop
	// wraps it when an apply-ops observer produces a log position although one was pre-assigned.
	// Failures of the BackgroundOpsRegistry assertions are returned as the registry produced them,
	// not wrapped in it. A library must not panic its embedder's process, so these are reported
	// rather than raised (DESIGN.md Open Question decision).
	ErrInvariantViolation = errors.New("catalog invariant violation")

	// ErrCrossDatabaseRollbackUnsupported is returned by RenameForRollback when uuid's current
	// namespace is in a different database than target: rollback assumes the rename being
	// undone was same-database (DESIGN.md Open Question decision).
	ErrCrossDatabaseRollbackUnsupported = errors.New("rollback across databases is not supported")

	// ErrRequiresDistributedRename signals that the source participates in a sharded
	// collection, so this package's cross-shard two-phase rename is out of scope (spec.md §1
	// Non-goals): the caller must hand the request to an external router.
	ErrRequiresDistributedRename = errors.New("rename requires a distributed two-phase router")
)
