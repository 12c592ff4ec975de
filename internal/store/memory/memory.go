// Package memory is an in-process Store used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/model"
)

// Store keeps records in memory with the same key constraints as the
// database schema.
type Store struct {
	mu           sync.Mutex
	imports      map[string]model.Import
	accounts     map[string]model.Account
	transactions []model.Transaction
	nextID       int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		imports:  make(map[string]model.Import),
		accounts: make(map[string]model.Account),
		nextID:   1,
	}
}

func (s *Store) InsertImport(_ context.Context, imp model.Import) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.imports[imp.ID]; ok {
		return fmt.Errorf("import %s: %w", imp.ID, importerr.ErrDuplicate)
	}
	s.imports[imp.ID] = imp
	return nil
}

// InsertAccounts stores all accounts or none.
func (s *Store) InsertAccounts(_ context.Context, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if _, ok := s.accounts[a.ID]; ok || seen[a.ID] {
			return fmt.Errorf("account %s: %w", a.ID, importerr.ErrDuplicate)
		}
		if _, ok := s.imports[a.ImportID]; !ok {
			return fmt.Errorf("account %s: unknown import %s", a.ID, a.ImportID)
		}
		seen[a.ID] = true
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return nil
}

func (s *Store) InsertTransaction(_ context.Context, txn model.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[txn.AccountID]; !ok {
		return 0, fmt.Errorf("transaction: unknown account %s", txn.AccountID)
	}
	txn.ID = s.nextID
	s.nextID++
	s.transactions = append(s.transactions, txn)
	return txn.ID, nil
}

// Imports returns the stored imports.
func (s *Store) Imports() []model.Import {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Import, 0, len(s.imports))
	for _, imp := range s.imports {
		out = append(out, imp)
	}
	return out
}

// Account returns a stored account by id.
func (s *Store) Account(id string) (model.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

// Transactions returns stored transactions in insertion order.
func (s *Store) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.transactions...)
}
