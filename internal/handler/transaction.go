// internal/handler/transaction.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListTransactions returns the caller's transactions, optionally bounded by
// inclusive start_date / end_date query params (YYYY-MM-DD).
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := storage.TransactionFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	fieldErrors := make(map[string]string)
	if filter.StartDate != "" {
		if _, err := time.Parse("2006-01-02", filter.StartDate); err != nil {
			fieldErrors["start_date"] = "Must be a date in YYYY-MM-DD format."
		}
	}
	if filter.EndDate != "" {
		if _, err := time.Parse("2006-01-02", filter.EndDate); err != nil {
			fieldErrors["end_date"] = "Must be a date in YYYY-MM-DD format."
		}
	}
	if len(fieldErrors) > 0 {
		badRequest(c, fieldErrors)
		return
	}

	transactions, err := h.store.TransactionsForUser(context.Background(), userID, filter)
	if err != nil {
		slog.Error("ListTransactions failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	fieldErrors := validateStruct(req)
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	amount, amountErr := checkAmount(req.Amount)
	if amountErr != "" {
		fieldErrors["amount"] = amountErr
	}
	if len(fieldErrors) > 0 {
		badRequest(c, fieldErrors)
		return
	}

	if req.Category != nil && !h.categoryVisible(c, userID, *req.Category) {
		return
	}

	transaction := domain.Transaction{
		UserID:          userID,
		Title:           req.Title,
		Amount:          amount,
		Type:            domain.EntryType(req.Type),
		CategoryID:      req.Category,
		TransactionDate: req.TransactionDate,
	}
	if _, err := h.store.CreateTransaction(context.Background(), &transaction); err != nil {
		slog.Error("CreateTransaction failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	transaction, err := h.store.TransactionByID(context.Background(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		slog.Error("GetTransaction failed", "error", err, "transaction_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	fieldErrors := validateStruct(req)
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	amount, amountErr := checkAmount(req.Amount)
	if amountErr != "" {
		fieldErrors["amount"] = amountErr
	}
	if len(fieldErrors) > 0 {
		badRequest(c, fieldErrors)
		return
	}

	existing, err := h.store.TransactionByID(context.Background(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		slog.Error("UpdateTransaction lookup failed", "error", err, "transaction_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	if req.Category != nil && !h.categoryVisible(c, userID, *req.Category) {
		return
	}

	existing.Title = req.Title
	existing.Amount = amount
	existing.Type = domain.EntryType(req.Type)
	existing.CategoryID = req.Category
	existing.TransactionDate = req.TransactionDate

	if err := h.store.UpdateTransaction(context.Background(), existing); err != nil {
		slog.Error("UpdateTransaction failed", "error", err, "transaction_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.store.DeleteTransaction(context.Background(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		slog.Error("DeleteTransaction failed", "error", err, "transaction_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// categoryVisible writes the error response itself and reports whether the
// caller may reference the category.
func (h *Handler) categoryVisible(c *gin.Context, userID, categoryID int64) bool {
	category, err := h.store.CategoryByID(context.Background(), categoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			badRequest(c, map[string]string{"category": "Category not found."})
			return false
		}
		slog.Error("Category lookup failed", "error", err, "category_id", categoryID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return false
	}
	if !category.VisibleTo(userID) {
		badRequest(c, map[string]string{"category": "Category not found."})
		return false
	}
	return true
}

// checkAmount enforces presence, non-negativity, and the 2-decimal-place
// limit of the numeric(12,2) column.
func checkAmount(d *decimal.Decimal) (decimal.Decimal, string) {
	if d == nil {
		return decimal.Decimal{}, "This field is required."
	}
	if d.IsNegative() {
		return decimal.Decimal{}, "Must not be negative."
	}
	if d.Exponent() < -2 {
		return decimal.Decimal{}, "Ensure that there are no more than 2 decimal places."
	}
	return *d, ""
}

// === DTO ===

type TransactionRequest struct {
	Title           string           `json:"title" validate:"required,notblank,max=255"`
	Amount          *decimal.Decimal `json:"amount"`
	Type            string           `json:"type" validate:"required,oneof=income expense"`
	Category        *int64           `json:"category"`
	TransactionDate string           `json:"transaction_date" validate:"required,dateonly"`
}
