package namespace

import (
	"context"
	"sync"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/catalog/types"
)

// fakeCatalog is an in-memory stand-in for the durable catalog, in the style of the teacher's
// daotest functional-options test builders, but implementing the dao interfaces directly since
// mockery cannot run here. It has no real transactional isolation: Transaction just invokes fn,
// which is sufficient for exercising the rename components' logic (not Postgres's concurrency
// control).
type fakeCatalog struct {
	mu          sync.Mutex
	databases   map[string]*dbmodel.Database // by name
	collections map[string]*dbmodel.Collection // by id
	indexes     map[string][]dbmodel.IndexDescriptor
	documents   map[string][]dbmodel.Document // by collection id
	nsLocks     map[string]bool
	nextID      int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		databases:   map[string]*dbmodel.Database{},
		collections: map[string]*dbmodel.Collection{},
		indexes:     map[string][]dbmodel.IndexDescriptor{},
		documents:   map[string][]dbmodel.Document{},
		nsLocks:     map[string]bool{},
	}
}

func (f *fakeCatalog) genID(prefix string) string {
	f.nextID++
	return prefix
}

// --- dbmodel.ITransaction ---

func (f *fakeCatalog) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- dbmodel.IMetaDomain ---

func (f *fakeCatalog) DatabaseDb(ctx context.Context) dbmodel.IDatabaseDb           { return fakeDatabaseDb{f} }
func (f *fakeCatalog) CollectionDb(ctx context.Context) dbmodel.ICollectionDb       { return fakeCollectionDb{f} }
func (f *fakeCatalog) IndexDb(ctx context.Context) dbmodel.IIndexDb                 { return fakeIndexDb{f} }
func (f *fakeCatalog) DocumentDb(ctx context.Context) dbmodel.IDocumentDb           { return fakeDocumentDb{f} }
func (f *fakeCatalog) NamespaceLockDb(ctx context.Context) dbmodel.INamespaceLockDb { return fakeNamespaceLockDb{f} }

// --- IDatabaseDb ---

type fakeDatabaseDb struct{ f *fakeCatalog }

func (d fakeDatabaseDb) GetByName(name string) (*dbmodel.Database, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	row, ok := d.f.databases[name]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (d fakeDatabaseDb) GetByID(id string) (*dbmodel.Database, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	for _, row := range d.f.databases {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (d fakeDatabaseDb) LockDatabase(name string) (*dbmodel.Database, error) {
	return d.GetByName(name)
}

func (d fakeDatabaseDb) Create(row *dbmodel.Database) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	cp := *row
	d.f.databases[row.Name] = &cp
	return nil
}

func (d fakeDatabaseDb) DeleteAll() error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.databases = map[string]*dbmodel.Database{}
	return nil
}

// --- ICollectionDb ---

type fakeCollectionDb struct{ f *fakeCatalog }

func (c fakeCollectionDb) GetByNamespace(databaseID, name string) (*dbmodel.Collection, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	for _, row := range c.f.collections {
		if row.DatabaseID == databaseID && row.Name == name {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (c fakeCollectionDb) GetByUUID(uuid string) (*dbmodel.Collection, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	for _, row := range c.f.collections {
		if row.UUID == uuid {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (c fakeCollectionDb) LockCollection(id string) (*dbmodel.Collection, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	row, ok := c.f.collections[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (c fakeCollectionDb) Create(row *dbmodel.Collection) error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	cp := *row
	c.f.collections[row.ID] = &cp
	return nil
}

func (c fakeCollectionDb) Update(id string, m dbmodel.CollectionMutation) error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	row, ok := c.f.collections[id]
	if !ok {
		return nil
	}
	if m.DatabaseID != nil {
		row.DatabaseID = *m.DatabaseID
	}
	if m.Name != nil {
		row.Name = *m.Name
	}
	if m.Temp != nil {
		row.Temp = *m.Temp
	}
	if m.DropPending != nil {
		row.DropPending = *m.DropPending
	}
	if m.RecordCount != nil {
		row.RecordCount = *m.RecordCount
	}
	return nil
}

func (c fakeCollectionDb) DeleteByID(id string) (int, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	if _, ok := c.f.collections[id]; !ok {
		return 0, nil
	}
	delete(c.f.collections, id)
	return 1, nil
}

func (c fakeCollectionDb) MakeUniqueNamespace(databaseID, suffix string) (string, error) {
	c.f.mu.Lock()
	c.f.nextID++
	n := c.f.nextID
	c.f.mu.Unlock()
	candidate := "tmpfake" + itoa(n) + "." + suffix
	return candidate, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// --- IIndexDb ---

type fakeIndexDb struct{ f *fakeCatalog }

func (i fakeIndexDb) ListReady(collectionID string) ([]dbmodel.IndexDescriptor, error) {
	i.f.mu.Lock()
	defer i.f.mu.Unlock()
	var out []dbmodel.IndexDescriptor
	for _, idx := range i.f.indexes[collectionID] {
		if idx.Ready {
			out = append(out, idx)
		}
	}
	return out, nil
}

func (i fakeIndexDb) CreateBatch(descriptors []dbmodel.IndexDescriptor) error {
	i.f.mu.Lock()
	defer i.f.mu.Unlock()
	for _, d := range descriptors {
		i.f.indexes[d.CollectionID] = append(i.f.indexes[d.CollectionID], d)
	}
	return nil
}

// --- IDocumentDb ---

type fakeDocumentDb struct{ f *fakeCatalog }

func (d fakeDocumentDb) FetchBatch(collectionID, afterID string, limit int) ([]dbmodel.Document, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	all := d.f.documents[collectionID]
	var out []dbmodel.Document
	started := afterID == ""
	for _, doc := range all {
		if !started {
			if doc.ID == afterID {
				started = true
			}
			continue
		}
		out = append(out, doc)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (d fakeDocumentDb) InsertBatch(docs []dbmodel.Document) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	for _, doc := range docs {
		d.f.documents[doc.CollectionID] = append(d.f.documents[doc.CollectionID], doc)
	}
	return nil
}

func (d fakeDocumentDb) CountByCollectionID(collectionID string) (int64, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	return int64(len(d.f.documents[collectionID])), nil
}

// --- INamespaceLockDb ---

type fakeNamespaceLockDb struct{ f *fakeCatalog }

func (n fakeNamespaceLockDb) LockNamespace(resourceID string) error {
	n.f.mu.Lock()
	defer n.f.mu.Unlock()
	n.f.nsLocks[resourceID] = true
	return nil
}

// --- test helpers ---

// seedDatabase creates a database row with a deterministic ID derived from its name.
func seedDatabase(f *fakeCatalog, name string) *dbmodel.Database {
	db := &dbmodel.Database{ID: "db-" + name, Name: name}
	_ = fakeDatabaseDb{f}.Create(db)
	return db
}

// seedCollection creates a collection row in databaseID with a fresh UUID (unless overridden).
func seedCollection(f *fakeCatalog, databaseID, name string, opts ...func(*dbmodel.Collection)) *dbmodel.Collection {
	col := &dbmodel.Collection{
		ID:         "col-" + databaseID + "-" + name,
		UUID:       types.NewCollectionID().String(),
		DatabaseID: databaseID,
		Name:       name,
	}
	for _, opt := range opts {
		opt(col)
	}
	_ = fakeCollectionDb{f}.Create(col)
	return col
}

func withUUID(uuid string) func(*dbmodel.Collection) {
	return func(c *dbmodel.Collection) { c.UUID = uuid }
}

func withIsView(v bool) func(*dbmodel.Collection) {
	return func(c *dbmodel.Collection) { c.IsView = v }
}

func withDropPending(v bool) func(*dbmodel.Collection) {
	return func(c *dbmodel.Collection) { c.DropPending = v }
}

// recordingObserver counts each call kind, so tests can assert "exactly one observer event"
// (spec.md §8 invariant 4).
type recordingObserver struct {
	mu               sync.Mutex
	onRenameCalls    int
	preRenameCalls   int
	postRenameCalls  int
	lastLogPosCursor int64
}

func (o *recordingObserver) OnRenameCollection(source, target types.Namespace, sourceUUID types.CollectionID, droppedTargetUUID types.OptionalCollectionID, droppedRecordCount int64, stayTemp bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onRenameCalls++
	return nil
}

func (o *recordingObserver) PreRenameCollection(source, target types.Namespace, sourceUUID, targetUUID types.CollectionID, numRecords int64, stayTemp bool, preAssignedLogPos types.OptionalLogPosition) (types.OptionalLogPosition, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.preRenameCalls++
	if preAssignedLogPos.Valid {
		return types.OptionalLogPosition{}, nil
	}
	o.lastLogPosCursor++
	return types.SomeLogPosition(types.LogPosition(o.lastLogPosCursor)), nil
}

func (o *recordingObserver) PostRenameCollection(source, target types.Namespace, sourceUUID, targetUUID types.CollectionID, stayTemp bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.postRenameCalls++
	return nil
}

func (o *recordingObserver) totalEvents() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	onePair := 0
	if o.preRenameCalls > 0 || o.postRenameCalls > 0 {
		onePair = 1
	}
	return o.onRenameCalls + onePair
}
