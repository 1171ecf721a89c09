package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appdebt "github.com/debttrack/backend/internal/application/debt"
	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/domain/shared"
	"github.com/debttrack/backend/internal/infrastructure/cache"
	"github.com/debttrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) FindByUser(ctx context.Context, userID int64) ([]*debt.Debt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*debt.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindByUserAndState(ctx context.Context, userID, stateID int64) ([]*debt.Debt, error) {
	args := m.Called(ctx, userID, stateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*debt.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*debt.Debt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*debt.Debt), args.Error(1)
}

func (m *MockDebtRepository) SumAmountsByState(ctx context.Context, userID int64) ([]debt.AmountAggregate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]debt.AmountAggregate), args.Error(1)
}

func (m *MockDebtRepository) Create(ctx context.Context, d *debt.Debt) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDebtRepository) UpdateIfNotTerminal(ctx context.Context, d *debt.Debt, terminalStateID int64) (*debt.Debt, error) {
	args := m.Called(ctx, d, terminalStateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*debt.Debt), args.Error(1)
}

func (m *MockDebtRepository) DeleteByIDAndUser(ctx context.Context, id, userID int64) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockDebtStateRepository struct {
	mock.Mock
}

func (m *MockDebtStateRepository) FindAll(ctx context.Context) ([]*debt.DebtState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*debt.DebtState), args.Error(1)
}

func (m *MockDebtStateRepository) FindByName(ctx context.Context, name string) (*debt.DebtState, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*debt.DebtState), args.Error(1)
}

// fakeAuth stands in for the JWT middleware and injects a fixed user id.
func fakeAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID > 0 {
			c.Set(middleware.JWTUserIDKey, userID)
		}
		c.Next()
	}
}

func newDebtRouter(t *testing.T, repo debt.DebtRepository, stateRepo debt.DebtStateRepository, userID int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := appdebt.NewDebtService(repo, stateRepo, cache.NewInMemoryCache(), appdebt.DebtServiceConfig{
		TerminalStateID: 3,
	}, nil)
	h := NewDebtHandler(service)

	router := gin.New()
	api := router.Group("/api/v1", fakeAuth(userID))
	api.GET("/debts", h.List)
	api.POST("/debts", h.Create)
	api.GET("/debts/states", h.States)
	api.GET("/debts/aggregates", h.Aggregates)
	api.GET("/debts/export", h.Export)
	api.GET("/debts/:id", h.Get)
	api.PUT("/debts/:id", h.Update)
	api.DELETE("/debts/:id", h.Delete)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleDebt(id, userID int64, amount string, stateID int64) *debt.Debt {
	return &debt.Debt{
		ID:           id,
		UserID:       userID,
		Amount:       decimal.RequireFromString(amount),
		CreationDate: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		StateID:      stateID,
	}
}

func TestDebtHandler_List(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("FindByUser", mock.Anything, int64(1)).Return([]*debt.Debt{
		sampleDebt(1, 1, "50", 1),
		sampleDebt(2, 1, "25.50", 2),
	}, nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var debts []DebtResponse
	require.NoError(t, json.Unmarshal(env.Data, &debts))
	require.Len(t, debts, 2)
	assert.Equal(t, int64(1), debts[0].ID)
	assert.Equal(t, int64(2), debts[1].ID)
	assert.True(t, debts[1].Amount.Equal(decimal.RequireFromString("25.50")))
}

func TestDebtHandler_List_StateFilter(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("FindByUserAndState", mock.Anything, int64(1), int64(2)).
		Return([]*debt.Debt{sampleDebt(2, 1, "25.50", 2)}, nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts?state_id=2", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var debts []DebtResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &debts))
	require.Len(t, debts, 1)
	assert.Equal(t, int64(2), debts[0].StateID)
	repo.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
}

func TestDebtHandler_List_Unauthenticated(t *testing.T) {
	router := newDebtRouter(t, new(MockDebtRepository), new(MockDebtStateRepository), 0)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestDebtHandler_Get_NotFound(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("FindByIDAndUser", mock.Anything, int64(9), int64(1)).Return(nil, shared.ErrNotFound)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts/9", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDebtHandler_Get_InvalidID(t *testing.T) {
	router := newDebtRouter(t, new(MockDebtRepository), new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestDebtHandler_Create(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*debt.Debt")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*debt.Debt).ID = 10
		}).
		Return(nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodPost, "/api/v1/debts", gin.H{
		"amount":   "120.00",
		"state_id": 1,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var resp DebtResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, int64(10), resp.ID)
	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("120.00")))
	assert.False(t, resp.CreationDate.IsZero())
}

func TestDebtHandler_Create_NegativeAmount(t *testing.T) {
	repo := new(MockDebtRepository)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodPost, "/api/v1/debts", gin.H{
		"amount":   "-5",
		"state_id": 1,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Amount must be a positive number", env.Error.Message)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDebtHandler_Update(t *testing.T) {
	updated := sampleDebt(4, 1, "80", 2)

	repo := new(MockDebtRepository)
	repo.On("UpdateIfNotTerminal", mock.Anything, mock.AnythingOfType("*debt.Debt"), int64(3)).
		Return(updated, nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodPut, "/api/v1/debts/4", gin.H{
		"amount":   "80",
		"state_id": 2,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DebtResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, int64(4), resp.ID)
	assert.Equal(t, int64(2), resp.StateID)
}

func TestDebtHandler_Update_PaidDebt(t *testing.T) {
	// A paid debt never matches the guarded update; it surfaces as not found.
	repo := new(MockDebtRepository)
	repo.On("UpdateIfNotTerminal", mock.Anything, mock.Anything, int64(3)).
		Return(nil, shared.ErrNotFound)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodPut, "/api/v1/debts/4", gin.H{
		"amount":   "80",
		"state_id": 2,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDebtHandler_Delete(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("DeleteByIDAndUser", mock.Anything, int64(5), int64(1)).Return(int64(1), nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodDelete, "/api/v1/debts/5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DeleteDebtResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, int64(1), resp.Deleted)
}

func TestDebtHandler_Delete_Absent(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("DeleteByIDAndUser", mock.Anything, int64(5), int64(1)).Return(int64(0), nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodDelete, "/api/v1/debts/5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DeleteDebtResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, int64(0), resp.Deleted)
}

func TestDebtHandler_States(t *testing.T) {
	stateRepo := new(MockDebtStateRepository)
	stateRepo.On("FindAll", mock.Anything).Return([]*debt.DebtState{
		{ID: 1, Name: "Pending"},
		{ID: 2, Name: "In Progress"},
		{ID: 3, Name: "Paid"},
	}, nil)

	router := newDebtRouter(t, new(MockDebtRepository), stateRepo, 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts/states", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var states []DebtStateResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &states))
	require.Len(t, states, 3)
	assert.Equal(t, "Paid", states[2].Name)
}

func TestDebtHandler_Aggregates(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("SumAmountsByState", mock.Anything, int64(1)).Return([]debt.AmountAggregate{
		{StateID: 1, TotalAmount: decimal.RequireFromString("75")},
		{StateID: 3, TotalAmount: decimal.RequireFromString("100")},
	}, nil)

	router := newDebtRouter(t, repo, new(MockDebtStateRepository), 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts/aggregates", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var aggregates []AggregateResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &aggregates))
	require.Len(t, aggregates, 2)
	assert.True(t, aggregates[0].TotalAmount.Equal(decimal.RequireFromString("75")))
}

func TestDebtHandler_Export(t *testing.T) {
	repo := new(MockDebtRepository)
	repo.On("FindByUser", mock.Anything, int64(1)).
		Return([]*debt.Debt{sampleDebt(1, 1, "50", 1)}, nil)

	stateRepo := new(MockDebtStateRepository)
	stateRepo.On("FindAll", mock.Anything).Return([]*debt.DebtState{
		{ID: 1, Name: "Pending"},
	}, nil)

	router := newDebtRouter(t, repo, stateRepo, 1)
	w := doJSON(t, router, http.MethodGet, "/api/v1/debts/export", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"debts-")

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	require.Len(t, resp.Debts, 1)
	require.Len(t, resp.States, 1)
	assert.False(t, resp.ExportedAt.IsZero())
}
