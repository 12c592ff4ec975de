// Package store defines the persistence boundary of the import engine.
package store

import (
	"context"

	"github.com/cleared-dev/holdings/internal/model"
)

// Store persists import records. Implementations report unique-key
// violations by wrapping importerr.ErrDuplicate.
type Store interface {
	InsertImport(ctx context.Context, imp model.Import) error
	InsertAccounts(ctx context.Context, accounts []model.Account) error
	// InsertTransaction stores txn and returns its assigned id.
	InsertTransaction(ctx context.Context, txn model.Transaction) (int64, error)
}
