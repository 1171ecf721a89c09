package persistence

import (
	"context"
	"errors"

	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/domain/shared"
	"github.com/debttrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDebtRepository implements debt.DebtRepository using GORM
type GormDebtRepository struct {
	db *gorm.DB
}

// NewGormDebtRepository creates a new GormDebtRepository
func NewGormDebtRepository(db *gorm.DB) *GormDebtRepository {
	return &GormDebtRepository{db: db}
}

// FindByUser returns all debts for the user in insertion order.
func (r *GormDebtRepository) FindByUser(ctx context.Context, userID int64) ([]*debt.Debt, error) {
	var rows []models.DebtModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDebts(rows), nil
}

// FindByUserAndState returns the user's debts in the given state in insertion order.
func (r *GormDebtRepository) FindByUserAndState(ctx context.Context, userID, stateID int64) ([]*debt.Debt, error) {
	var rows []models.DebtModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND state_id = ?", userID, stateID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDebts(rows), nil
}

// FindByIDAndUser returns the debt matching both id and owner. A row owned by
// another user yields the same shared.ErrNotFound as a missing row.
func (r *GormDebtRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*debt.Debt, error) {
	var model models.DebtModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SumAmountsByState aggregates the user's debt amounts per state. States with
// no debts produce no row.
func (r *GormDebtRepository) SumAmountsByState(ctx context.Context, userID int64) ([]debt.AmountAggregate, error) {
	var aggregates []debt.AmountAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.DebtModel{}).
		Select("state_id, SUM(amount) AS total_amount").
		Where("user_id = ?", userID).
		Group("state_id").
		Order("state_id ASC").
		Scan(&aggregates).Error; err != nil {
		return nil, err
	}
	return aggregates, nil
}

// Create persists a new debt and writes the generated id back into d.
func (r *GormDebtRepository) Create(ctx context.Context, d *debt.Debt) error {
	model := models.DebtModelFromDomain(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	d.ID = model.ID
	return nil
}

// UpdateIfNotTerminal applies amount and state in a single conditional UPDATE:
// the row must match id and owner and must not be in the terminal state. The
// guard lives in the WHERE clause so there is no read-then-write window.
// Zero matched rows surface as shared.ErrNotFound.
func (r *GormDebtRepository) UpdateIfNotTerminal(ctx context.Context, d *debt.Debt, terminalStateID int64) (*debt.Debt, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DebtModel{}).
		Where("id = ? AND user_id = ? AND state_id <> ?", d.ID, d.UserID, terminalStateID).
		Updates(map[string]interface{}{
			"amount":   d.Amount,
			"state_id": d.StateID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByIDAndUser(ctx, d.ID, d.UserID)
}

// DeleteByIDAndUser removes the debt matching both id and owner and returns
// the number of rows removed (0 or 1).
func (r *GormDebtRepository) DeleteByIDAndUser(ctx context.Context, id, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.DebtModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func toDomainDebts(rows []models.DebtModel) []*debt.Debt {
	debts := make([]*debt.Debt, len(rows))
	for i := range rows {
		debts[i] = rows[i].ToDomain()
	}
	return debts
}
