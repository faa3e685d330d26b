package namespace

import (
	"context"
	"errors"

	"github.com/catalogdb/renamecoll/internal/catalog/dao"
	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"github.com/catalogdb/renamecoll/internal/logging"
)

// maxWriteConflictAttempts mirrors the teacher's maxAttempts constant in table_catalog.go.
const maxWriteConflictAttempts = 10

// ErrSimulatedWriteConflict is returned by the bulk-copy loop when the
// FaultWriteConflictInCopyToTmp fault-injection point is active, so tests can force the exact
// retry-from-batch-start path of spec.md §8 scenario 5 without a real Postgres serialization
// failure.
var ErrSimulatedWriteConflict = errors.New("simulated write conflict (fault injection)")

func isRetryableWriteConflict(err error) bool {
	return dao.IsWriteConflict(err) || errors.Is(err, ErrSimulatedWriteConflict)
}

// WriteConflictRetry is the higher-order write-conflict retry primitive of spec.md §5/§9: body
// runs inside one write unit (an ITransaction.Transaction call), and on a transient write
// conflict -- here a Postgres serialization failure or deadlock (dao.IsWriteConflict) -- the
// enclosing write unit is torn down and body is retried from scratch, up to
// maxWriteConflictAttempts times. Grounded on the maxAttempts-bounded retry shape of
// table_catalog.go's UpdateCollection/hardDeleteCollection and the pgconn.PgError switch in
// dao/collection.go.
func WriteConflictRetry(ctx context.Context, tx dbmodel.ITransaction, label string, body func(txCtx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < maxWriteConflictAttempts; attempt++ {
		err := tx.Transaction(ctx, body)
		if err == nil {
			return nil
		}
		if !isRetryableWriteConflict(err) {
			return err
		}
		lastErr = err
		logging.Warn("write conflict, retrying",
			logging.String("label", label),
			logging.Int("attempt", attempt+1),
			logging.Err(err))
	}
	return lastErr
}
