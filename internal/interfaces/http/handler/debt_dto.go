package handler

import (
	"time"

	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/shopspring/decimal"
)

// CreateDebtRequest represents the request body for creating a debt
type CreateDebtRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	StateID      int64           `json:"state_id"`
	CreationDate *time.Time      `json:"creation_date,omitempty"`
}

// UpdateDebtRequest represents the request body for updating a debt
type UpdateDebtRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	StateID int64           `json:"state_id"`
}

// ListDebtsRequest represents the query parameters for listing debts
type ListDebtsRequest struct {
	StateID *int64 `form:"state_id" binding:"omitempty,min=1"`
}

// DebtResponse represents a debt in API responses
type DebtResponse struct {
	ID           int64           `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	CreationDate time.Time       `json:"creation_date"`
	StateID      int64           `json:"state_id"`
}

// DebtStateResponse represents a debt state in API responses
type DebtStateResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AggregateResponse represents a per-state amount total
type AggregateResponse struct {
	StateID     int64           `json:"state_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// DeleteDebtResponse reports how many rows the delete removed
type DeleteDebtResponse struct {
	Deleted int64 `json:"deleted"`
}

// ExportResponse is the JSON export envelope
type ExportResponse struct {
	ExportedAt time.Time           `json:"exported_at"`
	States     []DebtStateResponse `json:"states"`
	Debts      []DebtResponse      `json:"debts"`
}

func toDebtResponse(d *debt.Debt) DebtResponse {
	return DebtResponse{
		ID:           d.ID,
		Amount:       d.Amount,
		CreationDate: d.CreationDate,
		StateID:      d.StateID,
	}
}

func toDebtResponses(debts []*debt.Debt) []DebtResponse {
	out := make([]DebtResponse, len(debts))
	for i, d := range debts {
		out[i] = toDebtResponse(d)
	}
	return out
}

func toStateResponses(states []*debt.DebtState) []DebtStateResponse {
	out := make([]DebtStateResponse, len(states))
	for i, s := range states {
		out[i] = DebtStateResponse{ID: s.ID, Name: s.Name}
	}
	return out
}
