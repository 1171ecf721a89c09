package debt

import (
	"time"

	"github.com/debttrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TerminalStateName is the name of the terminal state. The id behind it is
// data-driven (loaded from DEBT_STATES), only the name is fixed.
const TerminalStateName = "Paid"

// DebtState is a reference-data row. The full set is loaded once and treated
// as read-only for the lifetime of the process.
type DebtState struct {
	ID   int64
	Name string
}

// Debt represents a single debt owned by exactly one user. Every read, update
// and delete is scoped by the owner id.
type Debt struct {
	ID           int64
	UserID       int64
	Amount       decimal.Decimal
	CreationDate time.Time
	StateID      int64
}

// AmountAggregate is a derived view: the sum of a user's debt amounts for one
// state. It is never persisted, only computed on demand and cached transiently.
type AmountAggregate struct {
	StateID     int64           `json:"state_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewDebt validates the input and builds a debt ready for persistence.
// Rules are checked in a fixed order and the first violation is the only
// message surfaced: owner, amount presence, state presence, amount positivity.
// A zero creationDate defaults to the current time.
func NewDebt(userID int64, amount decimal.Decimal, stateID int64, creationDate time.Time) (*Debt, error) {
	if userID <= 0 {
		return nil, shared.NewValidationError("User ID is required")
	}
	if amount.IsZero() {
		return nil, shared.NewValidationError("Amount is required")
	}
	if stateID <= 0 {
		return nil, shared.NewValidationError("Debt state ID is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Amount must be a positive number")
	}

	if creationDate.IsZero() {
		creationDate = time.Now()
	}

	return &Debt{
		UserID:       userID,
		Amount:       amount,
		CreationDate: creationDate,
		StateID:      stateID,
	}, nil
}

// IsTerminal reports whether the debt sits in the terminal state. Terminal
// debts may still be read and deleted, but never amount- or state-mutated.
func (d *Debt) IsTerminal(terminalStateID int64) bool {
	return d.StateID == terminalStateID
}
