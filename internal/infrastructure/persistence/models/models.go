package models

import (
	"time"

	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "app_user"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
	}
}

// UserModelFromDomain converts a domain User entity to a persistence model.
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
}

// DebtStateModel is the persistence model for the DebtState reference entity.
type DebtStateModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (DebtStateModel) TableName() string {
	return "debt_states"
}

// ToDomain converts the persistence model to a domain DebtState entity.
func (m *DebtStateModel) ToDomain() *debt.DebtState {
	return &debt.DebtState{
		ID:   m.ID,
		Name: m.Name,
	}
}

// DebtModel is the persistence model for the Debt domain entity.
type DebtModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	UserID       int64           `gorm:"not null;index"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreationDate time.Time       `gorm:"not null"`
	StateID      int64           `gorm:"column:state_id;not null;index"`

	User  *UserModel      `gorm:"foreignKey:UserID"`
	State *DebtStateModel `gorm:"foreignKey:StateID"`
}

// TableName returns the table name for GORM
func (DebtModel) TableName() string {
	return "debt"
}

// ToDomain converts the persistence model to a domain Debt entity.
func (m *DebtModel) ToDomain() *debt.Debt {
	return &debt.Debt{
		ID:           m.ID,
		UserID:       m.UserID,
		Amount:       m.Amount,
		CreationDate: m.CreationDate,
		StateID:      m.StateID,
	}
}

// DebtModelFromDomain converts a domain Debt entity to a persistence model.
func DebtModelFromDomain(d *debt.Debt) *DebtModel {
	return &DebtModel{
		ID:           d.ID,
		UserID:       d.UserID,
		Amount:       d.Amount,
		CreationDate: d.CreationDate,
		StateID:      d.StateID,
	}
}
