package inventory

import (
	"context"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/reconciliation"
)

// TransactionScope provides transactional access to the inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed or
// rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - SessionRepo: repository for the reconciliation session aggregate root.
//     Items are child entities persisted through the session.
//   - EntryRepo: append-only ledger entry repository. Adjustment entries
//     posted at submit time must commit in the same transaction that flips
//     the session status.
//   - SkuRepo: read access to the SKU catalog for snapshot validation.
type TransactionalRepositories interface {
	// SessionRepo returns the session repository scoped to the current transaction
	SessionRepo() reconciliation.SessionRepository
	// EntryRepo returns the ledger entry repository scoped to the current transaction
	EntryRepo() ledger.EntryRepository
	// SkuRepo returns the SKU repository scoped to the current transaction
	SkuRepo() catalog.SkuRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	sessionRepo reconciliation.SessionRepository
	entryRepo   ledger.EntryRepository
	skuRepo     catalog.SkuRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	sessionRepo reconciliation.SessionRepository,
	entryRepo ledger.EntryRepository,
	skuRepo catalog.SkuRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		skuRepo:     skuRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SessionRepo returns the session repository.
func (s *NoOpTransactionScope) SessionRepo() reconciliation.SessionRepository {
	return s.sessionRepo
}

// EntryRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) EntryRepo() ledger.EntryRepository {
	return s.entryRepo
}

// SkuRepo returns the SKU repository.
func (s *NoOpTransactionScope) SkuRepo() catalog.SkuRepository {
	return s.skuRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
