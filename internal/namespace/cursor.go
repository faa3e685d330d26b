package namespace

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
)

// DocumentCursor adapts keyset pagination over the documents table into the
// save/restore/seekExact/next capability spec.md §4.F step 10 and §9 ("Cursor save/restore
// under yielding") require, grounded on the offset/limit batching idiom used throughout
// dao/collection.go.
type DocumentCursor struct {
	docs         dbmodel.IDocumentDb
	collectionID string
	batchSize    int

	lastID string // the ID the next fetch starts strictly after
	saved  string // the position Save() captured, for Restore()
}

func NewDocumentCursor(docs dbmodel.IDocumentDb, collectionID string, batchSize int) *DocumentCursor {
	return &DocumentCursor{docs: docs, collectionID: collectionID, batchSize: batchSize}
}

// NextBatch fetches up to batchSize documents after the cursor's current position, without
// advancing the position -- the caller advances via Advance once the batch is durably copied,
// so a write-conflict retry can re-fetch the identical batch via SeekExact.
func (c *DocumentCursor) NextBatch(ctx context.Context) ([]dbmodel.Document, error) {
	return c.docs.FetchBatch(c.collectionID, c.lastID, c.batchSize)
}

// Advance moves the cursor past the last document of a batch that has been durably copied.
func (c *DocumentCursor) Advance(batch []dbmodel.Document) {
	if len(batch) == 0 {
		return
	}
	c.lastID = batch[len(batch)-1].ID
}

// Save captures the cursor's position before committing a batch's write unit, so a subsequent
// SeekExact can restore it across a yield (spec.md §4.F step 10).
func (c *DocumentCursor) Save() {
	c.saved = c.lastID
}

// Restore re-positions the cursor at the last saved position. Per spec.md, this must itself
// tolerate being called from within a write-conflict retry; it is a pure in-memory assignment
// here so it always succeeds.
func (c *DocumentCursor) Restore() {
	c.lastID = c.saved
}

// SeekExact repositions the cursor to resume strictly after recordID -- used when a write
// conflict forces a batch to retry from the record id that began the batch.
func (c *DocumentCursor) SeekExact(recordID string) {
	c.lastID = recordID
}
