package debt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/domain/shared"
	"github.com/debttrack/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// DebtServiceConfig contains configuration for the debt service
type DebtServiceConfig struct {
	// CacheTTL bounds staleness of cache entries that survive an
	// invalidation gap.
	CacheTTL time.Duration
	// TerminalStateID is the id of the terminal "Paid" state, resolved from
	// DEBT_STATES at startup.
	TerminalStateID int64
}

// DefaultDebtServiceConfig returns default configuration
func DefaultDebtServiceConfig() DebtServiceConfig {
	return DebtServiceConfig{
		CacheTTL: cache.DefaultTTL,
	}
}

// DebtService is the authoritative business-rule boundary for debts. It
// enforces ownership scoping and the terminal-state rule, and orchestrates
// the cache in front of the repositories.
type DebtService struct {
	debtRepo  debt.DebtRepository
	stateRepo debt.DebtStateRepository
	cache     cache.Cache
	config    DebtServiceConfig
	logger    *zap.Logger
}

// NewDebtService creates a new debt service
func NewDebtService(
	debtRepo debt.DebtRepository,
	stateRepo debt.DebtStateRepository,
	c cache.Cache,
	config DebtServiceConfig,
	logger *zap.Logger,
) *DebtService {
	if config.CacheTTL <= 0 {
		config.CacheTTL = cache.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebtService{
		debtRepo:  debtRepo,
		stateRepo: stateRepo,
		cache:     c,
		config:    config,
		logger:    logger,
	}
}

// ListDebts returns the user's debts in insertion order, optionally filtered
// by state, reading through the cache.
func (s *DebtService) ListDebts(ctx context.Context, userID int64, stateID *int64) ([]*debt.Debt, error) {
	if userID <= 0 {
		return nil, shared.NewValidationError("User ID is required")
	}

	key := cache.DebtsKey(userID)
	if stateID != nil {
		key = cache.DebtsByStateKey(userID, *stateID)
	}

	var cached []*debt.Debt
	if s.cacheRead(ctx, key, &cached) {
		return cached, nil
	}

	var debts []*debt.Debt
	var err error
	if stateID != nil {
		debts, err = s.debtRepo.FindByUserAndState(ctx, userID, *stateID)
	} else {
		debts, err = s.debtRepo.FindByUser(ctx, userID)
	}
	if err != nil {
		s.logger.Error("Failed to list debts", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.cacheWrite(ctx, key, debts)
	return debts, nil
}

// GetDebt returns a single debt scoped by owner. A debt owned by another user
// is indistinguishable from a non-existent one.
func (s *DebtService) GetDebt(ctx context.Context, debtID, userID int64) (*debt.Debt, error) {
	if debtID <= 0 {
		return nil, shared.NewValidationError("Debt ID is required")
	}
	if userID <= 0 {
		return nil, shared.NewValidationError("User ID is required")
	}

	key := cache.DebtKey(userID, debtID)
	var cached debt.Debt
	if s.cacheRead(ctx, key, &cached) {
		return &cached, nil
	}

	d, err := s.debtRepo.FindByIDAndUser(ctx, debtID, userID)
	if err != nil {
		return nil, err
	}

	s.cacheWrite(ctx, key, d)
	return d, nil
}

// AggregatesByState returns the per-state amount totals for one user. Only
// states with at least one debt appear.
func (s *DebtService) AggregatesByState(ctx context.Context, userID int64) ([]debt.AmountAggregate, error) {
	if userID <= 0 {
		return nil, shared.NewValidationError("User ID is required")
	}

	key := cache.AmountSumsKey(userID)
	var cached []debt.AmountAggregate
	if s.cacheRead(ctx, key, &cached) {
		return cached, nil
	}

	sums, err := s.debtRepo.SumAmountsByState(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to aggregate debts", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.cacheWrite(ctx, key, sums)
	return sums, nil
}

// ListStates returns the full DEBT_STATES reference set.
func (s *DebtService) ListStates(ctx context.Context) ([]*debt.DebtState, error) {
	key := cache.DebtStatesKey()
	var cached []*debt.DebtState
	if s.cacheRead(ctx, key, &cached) {
		return cached, nil
	}

	states, err := s.stateRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list debt states", zap.Error(err))
		return nil, err
	}

	s.cacheWrite(ctx, key, states)
	return states, nil
}

// CreateDebt validates the input, persists the new debt and invalidates every
// cache entry for the owner that could now be stale.
func (s *DebtService) CreateDebt(ctx context.Context, input CreateDebtInput) (*debt.Debt, error) {
	d, err := debt.NewDebt(input.UserID, input.Amount, input.StateID, input.CreationDate)
	if err != nil {
		return nil, err
	}

	if err := s.debtRepo.Create(ctx, d); err != nil {
		s.logger.Error("Failed to create debt", zap.Int64("user_id", input.UserID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx,
		cache.DebtsKey(d.UserID),
		cache.DebtsByStateKey(d.UserID, d.StateID),
		cache.AmountSumsKey(d.UserID),
	)

	s.logger.Info("Debt created",
		zap.Int64("debt_id", d.ID),
		zap.Int64("user_id", d.UserID),
		zap.Int64("state_id", d.StateID))

	return d, nil
}

// UpdateDebt writes amount and state through a single conditional statement:
// the row must match id and owner and must not be in the terminal state. Zero
// matched rows surface as shared.ErrNotFound (a not-applied outcome for the
// caller, not a hard failure).
func (s *DebtService) UpdateDebt(ctx context.Context, input UpdateDebtInput) (*debt.Debt, error) {
	if input.ID <= 0 {
		return nil, shared.NewValidationError("Debt ID is required")
	}
	// Same checks and ordering as creation for the remaining fields.
	if _, err := debt.NewDebt(input.UserID, input.Amount, input.StateID, time.Time{}); err != nil {
		return nil, err
	}

	d := &debt.Debt{
		ID:      input.ID,
		UserID:  input.UserID,
		Amount:  input.Amount,
		StateID: input.StateID,
	}

	updated, err := s.debtRepo.UpdateIfNotTerminal(ctx, d, s.config.TerminalStateID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx,
		cache.DebtsKey(updated.UserID),
		cache.DebtsByStateKey(updated.UserID, updated.StateID),
		cache.DebtKey(updated.UserID, updated.ID),
		cache.AmountSumsKey(updated.UserID),
	)

	s.logger.Info("Debt updated",
		zap.Int64("debt_id", updated.ID),
		zap.Int64("user_id", updated.UserID),
		zap.Int64("state_id", updated.StateID))

	return updated, nil
}

// DeleteDebt removes the debt matching both id and owner and returns the
// affected-row count. Deleting an absent or foreign row is a zero-count
// success, which also makes the operation idempotent.
func (s *DebtService) DeleteDebt(ctx context.Context, input DeleteDebtInput) (int64, error) {
	if input.ID <= 0 {
		return 0, shared.NewValidationError("Debt ID is required")
	}
	if input.UserID <= 0 {
		return 0, shared.NewValidationError("User ID is required")
	}

	count, err := s.debtRepo.DeleteByIDAndUser(ctx, input.ID, input.UserID)
	if err != nil {
		s.logger.Error("Failed to delete debt",
			zap.Int64("debt_id", input.ID),
			zap.Int64("user_id", input.UserID),
			zap.Error(err))
		return 0, err
	}

	keys := []string{
		cache.DebtsKey(input.UserID),
		cache.DebtKey(input.UserID, input.ID),
		cache.AmountSumsKey(input.UserID),
	}
	if input.StateID != nil {
		keys = append(keys, cache.DebtsByStateKey(input.UserID, *input.StateID))
	}
	s.invalidate(ctx, keys...)

	s.logger.Info("Debt deleted",
		zap.Int64("debt_id", input.ID),
		zap.Int64("user_id", input.UserID),
		zap.Int64("affected", count))

	return count, nil
}

// ExportDebts returns the user's full debt set with the state reference data,
// straight from storage so the export never serves a stale snapshot.
func (s *DebtService) ExportDebts(ctx context.Context, userID int64) (*DebtExport, error) {
	if userID <= 0 {
		return nil, shared.NewValidationError("User ID is required")
	}

	debts, err := s.debtRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	states, err := s.stateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return &DebtExport{
		ExportedAt: time.Now(),
		States:     states,
		Debts:      debts,
	}, nil
}

// cacheRead consults the availability gate, then unmarshals the cached JSON
// into dest. Any failure is a miss.
func (s *DebtService) cacheRead(ctx context.Context, key string, dest any) bool {
	if !s.cache.Ready(ctx) {
		return false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("Discarding undecodable cache entry",
			zap.String("key", key),
			zap.Error(err))
		s.cache.Delete(ctx, key)
		return false
	}
	return true
}

// cacheWrite stores the value best-effort; marshal failures are logged and
// dropped.
func (s *DebtService) cacheWrite(ctx context.Context, key string, v any) {
	if !s.cache.Ready(ctx) {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to marshal cache entry",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, string(raw), s.config.CacheTTL)
}

// invalidate deletes the keys when the cache is usable. Fire-and-forget: a
// failed invalidation never fails the mutation that triggered it.
func (s *DebtService) invalidate(ctx context.Context, keys ...string) {
	if !s.cache.Ready(ctx) {
		return
	}
	s.cache.Delete(ctx, keys...)
}
