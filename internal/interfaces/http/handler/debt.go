package handler

import (
	"time"

	appdebt "github.com/debttrack/backend/internal/application/debt"
	"github.com/debttrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DebtHandler handles debt-related HTTP requests. Every route is scoped to
// the authenticated user from the JWT claims.
type DebtHandler struct {
	BaseHandler
	debtService *appdebt.DebtService
}

// NewDebtHandler creates a new debt handler
func NewDebtHandler(debtService *appdebt.DebtService) *DebtHandler {
	return &DebtHandler{
		debtService: debtService,
	}
}

// RegisterRoutes registers all debt routes. Static paths come before the
// parameterized ones so gin matches them as siblings of :id.
func (h *DebtHandler) RegisterRoutes(rg *gin.RouterGroup) {
	debts := rg.Group("/debts")
	{
		debts.GET("", h.List)
		debts.POST("", h.Create)
		debts.GET("/states", h.States)
		debts.GET("/aggregates", h.Aggregates)
		debts.GET("/export", h.Export)
		debts.GET("/:id", h.Get)
		debts.PUT("/:id", h.Update)
		debts.DELETE("/:id", h.Delete)
	}
}

// List returns the user's debts, optionally filtered by state.
func (h *DebtHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ListDebtsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	debts, err := h.debtService.ListDebts(c.Request.Context(), userID, req.StateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDebtResponses(debts))
}

// Get returns a single debt owned by the user.
func (h *DebtHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid debt id")
		return
	}

	d, err := h.debtService.GetDebt(c.Request.Context(), uri.ID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDebtResponse(d))
}

// Aggregates returns the per-state amount totals for the user.
func (h *DebtHandler) Aggregates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	aggregates, err := h.debtService.AggregatesByState(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]AggregateResponse, len(aggregates))
	for i, a := range aggregates {
		out[i] = AggregateResponse{StateID: a.StateID, TotalAmount: a.TotalAmount}
	}
	h.Success(c, out)
}

// States returns the debt state reference set.
func (h *DebtHandler) States(c *gin.Context) {
	states, err := h.debtService.ListStates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStateResponses(states))
}

// Create adds a new debt for the user.
func (h *DebtHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	input := appdebt.CreateDebtInput{
		UserID:  userID,
		Amount:  req.Amount,
		StateID: req.StateID,
	}
	if req.CreationDate != nil {
		input.CreationDate = *req.CreationDate
	}

	d, err := h.debtService.CreateDebt(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toDebtResponse(d))
}

// Update changes a debt's amount and state unless the debt is paid.
func (h *DebtHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid debt id")
		return
	}

	var req UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	d, err := h.debtService.UpdateDebt(c.Request.Context(), appdebt.UpdateDebtInput{
		ID:      uri.ID,
		UserID:  userID,
		Amount:  req.Amount,
		StateID: req.StateID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDebtResponse(d))
}

// Delete removes a debt. Deleting an absent or foreign debt reports zero
// affected rows rather than an error.
func (h *DebtHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid debt id")
		return
	}

	var req ListDebtsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	count, err := h.debtService.DeleteDebt(c.Request.Context(), appdebt.DeleteDebtInput{
		ID:      uri.ID,
		UserID:  userID,
		StateID: req.StateID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DeleteDebtResponse{Deleted: count})
}

// Export returns the user's full debt set as a downloadable JSON document.
func (h *DebtHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	export, err := h.debtService.ExportDebts(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="debts-`+time.Now().Format("2006-01-02")+`.json"`)
	h.Success(c, ExportResponse{
		ExportedAt: export.ExportedAt,
		States:     toStateResponses(export.States),
		Debts:      toDebtResponses(export.Debts),
	})
}
