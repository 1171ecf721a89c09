package cache

import (
	"context"
	"strconv"
	"time"
)

// DefaultTTL bounds staleness for entries that survive an invalidation gap
// (e.g. a crash between write and invalidate).
const DefaultTTL = time.Hour

// Cache is the read-through/write-invalidate cache consumed by the domain
// services. All operations are best-effort: a backend outage is a miss on
// reads and a logged no-op on writes, never an error for the caller.
type Cache interface {
	// Ready reports whether the cache is usable right now. Services consult
	// it before every get/set/invalidate and bypass the cache entirely when
	// it returns false.
	Ready(ctx context.Context) bool

	// Get returns the cached value and true, or "" and false on a miss.
	// Backend failures are misses.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value with the given TTL. Failures are logged, never
	// propagated.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes one or more keys. Failures are logged, never propagated.
	Delete(ctx context.Context, keys ...string)
}

// Cache keys are deterministic composites of entity kind, owner and optional
// filter. Formats are part of the invalidation contract: every mutation must
// delete all keys whose content could now be stale for the affected owner.

// DebtsKey is the unfiltered debt list for one user.
func DebtsKey(userID int64) string {
	return "debts:" + strconv.FormatInt(userID, 10)
}

// DebtsByStateKey is the state-filtered debt list for one user.
func DebtsByStateKey(userID, stateID int64) string {
	return "debts:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(stateID, 10)
}

// DebtKey is a single debt scoped by its owner.
func DebtKey(userID, debtID int64) string {
	return "debt:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(debtID, 10)
}

// AmountSumsKey is the per-state aggregate totals for one user.
func AmountSumsKey(userID int64) string {
	return "amountSums:" + strconv.FormatInt(userID, 10)
}

// DebtStatesKey is the global reference-data entry; it carries no owner
// because DEBT_STATES is shared and read-only.
func DebtStatesKey() string {
	return "debtStates"
}
