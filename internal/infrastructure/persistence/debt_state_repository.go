package persistence

import (
	"context"
	"errors"

	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/domain/shared"
	"github.com/debttrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDebtStateRepository implements debt.DebtStateRepository using GORM
type GormDebtStateRepository struct {
	db *gorm.DB
}

// NewGormDebtStateRepository creates a new GormDebtStateRepository
func NewGormDebtStateRepository(db *gorm.DB) *GormDebtStateRepository {
	return &GormDebtStateRepository{db: db}
}

// FindAll returns the full state reference set ordered by id.
func (r *GormDebtStateRepository) FindAll(ctx context.Context) ([]*debt.DebtState, error) {
	var rows []models.DebtStateModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	states := make([]*debt.DebtState, len(rows))
	for i := range rows {
		states[i] = rows[i].ToDomain()
	}
	return states, nil
}

// FindByName finds a state by its exact name
func (r *GormDebtStateRepository) FindByName(ctx context.Context, name string) (*debt.DebtState, error) {
	var model models.DebtStateModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
