package debt

import (
	"context"
)

// DebtRepository defines the persistence interface for debts. Implementations
// must return shared.ErrNotFound for single-row lookups that match nothing,
// including rows that exist but belong to a different user.
type DebtRepository interface {
	// FindByUser returns all debts owned by userID in insertion order.
	FindByUser(ctx context.Context, userID int64) ([]*Debt, error)

	// FindByUserAndState returns the owned debts in the given state, in
	// insertion order.
	FindByUserAndState(ctx context.Context, userID, stateID int64) ([]*Debt, error)

	// FindByIDAndUser returns the debt matching both id and owner.
	FindByIDAndUser(ctx context.Context, id, userID int64) (*Debt, error)

	// SumAmountsByState returns the per-state amount totals for one user.
	// States without any matching debt are omitted.
	SumAmountsByState(ctx context.Context, userID int64) ([]AmountAggregate, error)

	// Create persists a new debt and fills in the generated id.
	Create(ctx context.Context, d *Debt) error

	// UpdateIfNotTerminal writes amount and state in a single conditional
	// statement guarded by id, owner and state_id <> terminalStateID.
	// It returns the updated row, or shared.ErrNotFound when zero rows
	// matched (absent, foreign-owned or already terminal).
	UpdateIfNotTerminal(ctx context.Context, d *Debt, terminalStateID int64) (*Debt, error)

	// DeleteByIDAndUser removes the row matching both id and owner and
	// returns the affected-row count (0 or 1).
	DeleteByIDAndUser(ctx context.Context, id, userID int64) (int64, error)
}

// DebtStateRepository provides access to the fixed DEBT_STATES reference set.
type DebtStateRepository interface {
	FindAll(ctx context.Context) ([]*DebtState, error)
	FindByName(ctx context.Context, name string) (*DebtState, error)
}
