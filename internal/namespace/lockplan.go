package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
)

// LockScope is the "moveable owning handle" of spec.md §9: its Release is a no-op here because
// the underlying row locks are scoped to the enclosing Postgres transaction and release on
// commit/rollback regardless, but call sites still acquire/defer-release it so the lock
// ownership is visible at the call site and the shape matches a real lock-manager-backed
// implementation an embedder might swap in.
type LockScope struct {
	released bool
}

func (l *LockScope) Release() {
	l.released = true
}

// LockPlanner acquires database and collection locks in the deterministic, deadlock-free
// order spec.md §4.B specifies, grounded on the explicit lock-ordering comment in the
// teacher's ForkCollection/hardDeleteCollection ("the locking order ... must be EXACTLY THE
// SAME ... to avoid deadlocks").
type LockPlanner struct {
	meta dbmodel.IMetaDomain
}

func NewLockPlanner(meta dbmodel.IMetaDomain) *LockPlanner {
	return &LockPlanner{meta: meta}
}

// AcquireSameDatabaseNormal locks the shared database in intent-exclusive mode (modeled as a
// database row lock) then both namespaces in exclusive mode (modeled as namespace-lock-row
// locks), in ascending ResourceID order unless one of the two names the views catalog, in
// which case the views namespace is locked last (spec.md §4.B "Same database, normal mode").
func (p *LockPlanner) AcquireSameDatabaseNormal(ctx context.Context, source, target types.Namespace) (*LockScope, error) {
	if err := p.lockDatabaseRow(ctx, source.Database); err != nil {
		return nil, err
	}
	first, second := source, target
	switch {
	case target.IsSystemViews():
		first, second = source, target
	case source.IsSystemViews():
		first, second = target, source
	case target.ResourceID() < source.ResourceID():
		first, second = target, source
	}
	if err := p.lockNamespaceRow(ctx, first); err != nil {
		return nil, err
	}
	if err := p.lockNamespaceRow(ctx, second); err != nil {
		return nil, err
	}
	return &LockScope{}, nil
}

// AcquireSameDatabaseApplyOps takes the database lock in exclusive mode; exclusivity subsumes
// the need for separate collection locks (spec.md §4.B "Same database, apply-ops mode").
func (p *LockPlanner) AcquireSameDatabaseApplyOps(ctx context.Context, database string) (*LockScope, error) {
	if err := p.lockDatabaseRow(ctx, database); err != nil {
		return nil, err
	}
	return &LockScope{}, nil
}

// CrossDatabaseLocks holds the three lock handles the cross-database copier needs across its
// phases (spec.md §4.B "Cross-database" / §4.F step 9's lock downgrade).
type CrossDatabaseLocks struct {
	planner          *LockPlanner
	sourceDatabase   string
	targetDatabase   string
	sourceCollection types.Namespace
	stagingLocked    bool
}

// AcquireCrossDatabase takes the source database row lock, the source collection's namespace
// lock, and the target database row lock. The source namespace lock is the same SELECT ... FOR
// UPDATE row lock as every other namespace lock here; there is no shared (read) mode. A target
// database that does not exist yet is not an error: renameCrossDatabase creates it.
func (p *LockPlanner) AcquireCrossDatabase(ctx context.Context, source, target types.Namespace) (*CrossDatabaseLocks, error) {
	if err := p.lockDatabaseRow(ctx, source.Database); err != nil {
		return nil, err
	}
	if err := p.lockNamespaceRow(ctx, source); err != nil {
		return nil, err
	}
	if _, err := p.meta.DatabaseDb(ctx).LockDatabase(target.Database); err != nil {
		return nil, err
	}
	return &CrossDatabaseLocks{planner: p, sourceDatabase: source.Database, targetDatabase: target.Database, sourceCollection: source}, nil
}

// DowngradeToStaging takes the staging collection's namespace lock before the bulk copy
// (spec.md §4.B, §4.F step 9). It does not release the target-database lock.
func (c *CrossDatabaseLocks) DowngradeToStaging(ctx context.Context, staging types.Namespace) error {
	if err := c.planner.lockNamespaceRow(ctx, staging); err != nil {
		return err
	}
	c.stagingLocked = true
	return nil
}

// ReleaseSource marks the point after the bulk copy where the source collection and source
// database locks are no longer needed (spec.md §4.F step 11). It does nothing: it releases no
// lock and records no state.
func (c *CrossDatabaseLocks) ReleaseSource() {}

func (p *LockPlanner) lockDatabaseRow(ctx context.Context, database string) error {
	db, err := p.meta.DatabaseDb(ctx).LockDatabase(database)
	if err != nil {
		return err
	}
	if db == nil {
		return ErrNamespaceNotFound
	}
	return nil
}

func (p *LockPlanner) lockNamespaceRow(ctx context.Context, ns types.Namespace) error {
	return p.meta.NamespaceLockDb(ctx).LockNamespace(ns.ResourceID())
}
