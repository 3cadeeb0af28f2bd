// internal/handler/budget.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SetBudget is the budget write entrypoint. Setting a budget is idempotent
// per (user, category, month, year): the first request creates the row
// (201), any later request for the same tuple updates its amount_limit in
// place (200). The store's single-statement upsert makes racing creates
// converge instead of erroring.
func (h *Handler) SetBudget(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	fieldErrors := validateStruct(req)
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	amount, amountErr := checkAmount(req.AmountLimit)
	if amountErr != "" {
		fieldErrors["amount_limit"] = amountErr
	}
	if len(fieldErrors) > 0 {
		badRequest(c, fieldErrors)
		return
	}

	if !h.categoryVisible(c, userID, req.Category) {
		return
	}

	budget := domain.Budget{
		UserID:      userID,
		CategoryID:  req.Category,
		Month:       req.Month,
		Year:        req.Year,
		AmountLimit: amount,
	}
	created, err := h.store.UpsertBudget(context.Background(), &budget)
	if err != nil {
		slog.Error("UpsertBudget failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	slog.Info("Budget set", "user_id", userID, "budget_id", budget.ID, "created", created)
	c.JSON(status, budget)
}

func (h *Handler) ListBudgets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	budgets, err := h.store.BudgetsForUser(context.Background(), userID)
	if err != nil {
		slog.Error("ListBudgets failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if budgets == nil {
		budgets = []domain.Budget{}
	}
	c.JSON(http.StatusOK, budgets)
}

func (h *Handler) GetBudget(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	budget, err := h.store.BudgetByID(context.Background(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
			return
		}
		slog.Error("GetBudget failed", "error", err, "budget_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, budget)
}

// UpdateBudget targets one record by id. Unlike SetBudget it never
// redirects onto another row: moving this budget onto a key tuple another
// budget already occupies is rejected.
func (h *Handler) UpdateBudget(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	budget, err := h.store.BudgetByID(context.Background(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
			return
		}
		slog.Error("UpdateBudget lookup failed", "error", err, "budget_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	// Absent fields keep their current values, so PATCH and PUT share this.
	if req.Category != nil {
		budget.CategoryID = *req.Category
	}
	if req.Month != nil {
		budget.Month = *req.Month
	}
	if req.Year != nil {
		budget.Year = *req.Year
	}
	fieldErrors := make(map[string]string)
	if budget.Month < 1 || budget.Month > 12 {
		fieldErrors["month"] = "Must be between 1 and 12."
	}
	if budget.Year <= 0 {
		fieldErrors["year"] = "Must be greater than 0."
	}
	if req.AmountLimit != nil {
		amount, amountErr := checkAmount(req.AmountLimit)
		if amountErr != "" {
			fieldErrors["amount_limit"] = amountErr
		} else {
			budget.AmountLimit = amount
		}
	}
	if len(fieldErrors) > 0 {
		badRequest(c, fieldErrors)
		return
	}

	if req.Category != nil && !h.categoryVisible(c, userID, budget.CategoryID) {
		return
	}

	// Reject when the new tuple is already occupied by a different record.
	other, err := h.store.BudgetByKey(context.Background(), userID, budget.CategoryID, budget.Month, budget.Year)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("Budget key lookup failed", "error", err, "budget_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if other != nil && other.ID != budget.ID {
		badRequest(c, map[string]string{"budget": storage.ErrBudgetConflict.Error()})
		return
	}

	if err := h.store.UpdateBudget(context.Background(), budget); err != nil {
		switch {
		case errors.Is(err, storage.ErrBudgetConflict):
			// A racing writer occupied the tuple between lookup and write.
			badRequest(c, map[string]string{"budget": storage.ErrBudgetConflict.Error()})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		default:
			slog.Error("UpdateBudget failed", "error", err, "budget_id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *Handler) DeleteBudget(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.store.DeleteBudget(context.Background(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
			return
		}
		slog.Error("DeleteBudget failed", "error", err, "budget_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// === DTO ===

type BudgetRequest struct {
	Category    int64            `json:"category" validate:"required,gt=0"`
	Month       int              `json:"month" validate:"required,gte=1,lte=12"`
	Year        int              `json:"year" validate:"required,gt=0"`
	AmountLimit *decimal.Decimal `json:"amount_limit"`
}

type UpdateBudgetRequest struct {
	Category    *int64           `json:"category"`
	Month       *int             `json:"month"`
	Year        *int             `json:"year"`
	AmountLimit *decimal.Decimal `json:"amount_limit"`
}
