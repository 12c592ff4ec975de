// Package postgres is the PostgreSQL Store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/logger"
	"github.com/cleared-dev/holdings/internal/model"
)

const uniqueViolation = "23505"

// DBTX is the subset of pgx used by the store. Satisfied by *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store writes import records with one statement per record.
type Store struct {
	db DBTX
}

// New wraps a connection.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Connect opens a single connection to databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	cfg := conn.Config()
	log := logger.FromContext(ctx)
	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("connected to database")
	return conn, nil
}

func (s *Store) InsertImport(ctx context.Context, imp model.Import) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO imports (id, filename, platform_id, generation_date) VALUES ($1, $2, $3, $4)`,
		imp.ID, imp.Filename, imp.PlatformID, imp.GenerationDate)
	return mapError(err)
}

func (s *Store) InsertAccounts(ctx context.Context, accounts []model.Account) error {
	for _, a := range accounts {
		var kind *string
		if a.Kind != nil {
			k := string(*a.Kind)
			kind = &k
		}
		_, err := s.db.Exec(ctx,
			`INSERT INTO accounts (id, platform_id, import_id, label, kind) VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.PlatformID, a.ImportID, a.Label, kind)
		if err != nil {
			return fmt.Errorf("account %s: %w", a.ID, mapError(err))
		}
	}
	return nil
}

func (s *Store) InsertTransaction(ctx context.Context, txn model.Transaction) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO transactions
			(execution_time, ticker_symbol, unit_quantity, cost_per_unit, currency_symbol, account_id, import_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		txn.ExecutionTime, txn.TickerSymbol, txn.UnitQuantity, txn.CostPerUnit,
		txn.CurrencySymbol, txn.AccountID, txn.ImportID,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// mapError turns unique violations into importerr.ErrDuplicate.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, importerr.ErrDuplicate)
	}
	return err
}
