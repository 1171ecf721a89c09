package debt

import (
	"time"

	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/shopspring/decimal"
)

// CreateDebtInput contains the input for debt creation. A zero CreationDate
// defaults to the current time.
type CreateDebtInput struct {
	UserID       int64
	Amount       decimal.Decimal
	StateID      int64
	CreationDate time.Time
}

// UpdateDebtInput contains the input for a debt update. Amount and state are
// the only mutable fields.
type UpdateDebtInput struct {
	ID      int64
	UserID  int64
	Amount  decimal.Decimal
	StateID int64
}

// DeleteDebtInput contains the input for a debt deletion. StateID is optional
// and only widens cache invalidation to the matching filtered list.
type DeleteDebtInput struct {
	ID      int64
	UserID  int64
	StateID *int64
}

// DebtExport is the JSON export payload for one user's full debt set.
type DebtExport struct {
	ExportedAt time.Time          `json:"exported_at"`
	States     []*debt.DebtState  `json:"states"`
	Debts      []*debt.Debt       `json:"debts"`
}
