package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	debtapp "github.com/debttrack/backend/internal/application/debt"
	identityapp "github.com/debttrack/backend/internal/application/identity"
	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/infrastructure/auth"
	"github.com/debttrack/backend/internal/infrastructure/cache"
	"github.com/debttrack/backend/internal/infrastructure/config"
	"github.com/debttrack/backend/internal/infrastructure/persistence"
	"github.com/debttrack/backend/internal/interfaces/http/handler"
	"github.com/debttrack/backend/internal/interfaces/http/middleware"
	"github.com/debttrack/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer wires the full HTTP stack over a migrated PostgreSQL
// database, mirroring the server binary's composition.
func newTestServer(t *testing.T, tdb *TestDB) *gin.Engine {
	t.Helper()

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	debtRepo := persistence.NewGormDebtRepository(tdb.DB)
	stateRepo := persistence.NewGormDebtStateRepository(tdb.DB)

	terminalState, err := stateRepo.FindByName(t.Context(), debt.TerminalStateName)
	require.NoError(t, err, "terminal state must be seeded by migrations")

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "integration-test-secret-key-000000",
		Expiration: time.Hour,
		Issuer:     "debttrack-test",
	})
	userService := identityapp.NewUserService(userRepo, jwtService, nil)
	debtService := debtapp.NewDebtService(debtRepo, stateRepo, cache.NewInMemoryCache(), debtapp.DebtServiceConfig{
		TerminalStateID: terminalState.ID,
	}, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.JWTAuthMiddleware(jwtService))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewAuthHandler(userService)).
		Register(handler.NewDebtHandler(debtService))
	r.Setup()

	return engine
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func request(t *testing.T, engine *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func registerAndLogin(t *testing.T, engine *gin.Engine, email, password string) string {
	t.Helper()

	w, _ := request(t, engine, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := request(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func TestDebtLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	tdb := NewTestDB(t)
	engine := newTestServer(t, tdb)

	token := registerAndLogin(t, engine, "alice@example.com", "s3cret-pass")

	// Unauthenticated requests are rejected before reaching the handlers.
	w, env := request(t, engine, http.MethodGet, "/api/v1/debts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)

	// Duplicate registration conflicts.
	w, env = request(t, engine, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "alice@example.com", "password": "other-pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)

	// States are seeded by migrations.
	w, env = request(t, engine, http.MethodGet, "/api/v1/debts/states", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var states []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &states))
	require.Len(t, states, 3)

	stateByName := make(map[string]int64, len(states))
	for _, s := range states {
		stateByName[s.Name] = s.ID
	}
	pendingID := stateByName["Pending"]
	paidID := stateByName["Paid"]
	require.NotZero(t, pendingID)
	require.NotZero(t, paidID)

	// Create two debts.
	w, env = request(t, engine, http.MethodPost, "/api/v1/debts", token, gin.H{
		"amount": "120.50", "state_id": pendingID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var first struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))

	w, _ = request(t, engine, http.MethodPost, "/api/v1/debts", token, gin.H{
		"amount": "30", "state_id": paidID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Validation rejects non-positive amounts.
	w, env = request(t, engine, http.MethodPost, "/api/v1/debts", token, gin.H{
		"amount": "-1", "state_id": pendingID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Amount must be a positive number", env.Error.Message)

	// Full and filtered listings.
	w, env = request(t, engine, http.MethodGet, "/api/v1/debts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 2)

	w, env = request(t, engine, http.MethodGet, "/api/v1/debts?state_id="+itoa(pendingID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)

	// Per-state aggregates.
	w, env = request(t, engine, http.MethodGet, "/api/v1/debts/aggregates", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var aggregates []struct {
		StateID     int64  `json:"state_id"`
		TotalAmount string `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &aggregates))
	assert.Len(t, aggregates, 2)

	// Update the first debt, then mark it paid.
	w, _ = request(t, engine, http.MethodPut, "/api/v1/debts/"+itoa(first.ID), token, gin.H{
		"amount": "99.99", "state_id": pendingID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = request(t, engine, http.MethodPut, "/api/v1/debts/"+itoa(first.ID), token, gin.H{
		"amount": "99.99", "state_id": paidID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Paid debts can no longer be updated.
	w, env = request(t, engine, http.MethodPut, "/api/v1/debts/"+itoa(first.ID), token, gin.H{
		"amount": "1", "state_id": pendingID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	// Export bundles states and debts.
	w, env = request(t, engine, http.MethodGet, "/api/v1/debts/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	var export struct {
		States []json.RawMessage `json:"states"`
		Debts  []json.RawMessage `json:"debts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &export))
	assert.Len(t, export.States, 3)
	assert.Len(t, export.Debts, 2)

	// Delete reports affected rows, and repeating it reports zero.
	w, env = request(t, engine, http.MethodDelete, "/api/v1/debts/"+itoa(first.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted struct {
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, int64(1), deleted.Deleted)

	w, env = request(t, engine, http.MethodDelete, "/api/v1/debts/"+itoa(first.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, int64(0), deleted.Deleted)
}

func TestDebtOwnershipIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	tdb := NewTestDB(t)
	engine := newTestServer(t, tdb)

	aliceToken := registerAndLogin(t, engine, "alice@example.com", "s3cret-pass")
	bobToken := registerAndLogin(t, engine, "bob@example.com", "hunter2-pass")

	w, env := request(t, engine, http.MethodPost, "/api/v1/debts", aliceToken, gin.H{
		"amount": "500", "state_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// Bob sees an empty list and cannot read or mutate Alice's debt.
	w, env = request(t, engine, http.MethodGet, "/api/v1/debts", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Empty(t, listed)

	w, env = request(t, engine, http.MethodGet, "/api/v1/debts/"+itoa(created.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, env = request(t, engine, http.MethodPut, "/api/v1/debts/"+itoa(created.ID), bobToken, gin.H{
		"amount": "1", "state_id": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = request(t, engine, http.MethodDelete, "/api/v1/debts/"+itoa(created.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted struct {
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, int64(0), deleted.Deleted)

	// Alice's debt is untouched.
	w, _ = request(t, engine, http.MethodGet, "/api/v1/debts/"+itoa(created.ID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
