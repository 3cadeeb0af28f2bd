// internal/handler/category.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	categories, err := h.store.CategoriesForUser(context.Background(), userID)
	if err != nil {
		slog.Error("ListCategories failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		badRequest(c, fieldErrors)
		return
	}

	// Write-time rejection only; the store does not enforce name uniqueness.
	exists, err := h.store.CategoryNameExists(context.Background(), userID, req.Name)
	if err != nil {
		slog.Error("Category name check failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if exists {
		badRequest(c, map[string]string{"name": "A category with this name already exists."})
		return
	}

	category := domain.Category{
		Name:   req.Name,
		Type:   domain.EntryType(req.Type),
		UserID: &userID,
	}
	if _, err := h.store.CreateCategory(context.Background(), &category); err != nil {
		slog.Error("CreateCategory failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) GetCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	category, err := h.store.CategoryByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		slog.Error("GetCategory failed", "error", err, "category_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if !category.VisibleTo(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		badRequest(c, fieldErrors)
		return
	}

	existing, err := h.store.CategoryByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		slog.Error("UpdateCategory lookup failed", "error", err, "category_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	// Global categories are read-only through the API.
	if existing.UserID == nil || *existing.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if req.Name != existing.Name {
		exists, err := h.store.CategoryNameExists(context.Background(), userID, req.Name)
		if err != nil {
			slog.Error("Category name check failed", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		if exists {
			badRequest(c, map[string]string{"name": "A category with this name already exists."})
			return
		}
	}

	existing.Name = req.Name
	existing.Type = domain.EntryType(req.Type)
	if err := h.store.UpdateCategory(context.Background(), userID, existing); err != nil {
		slog.Error("UpdateCategory failed", "error", err, "category_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, existing)
}

// DeleteCategory cascades: budgets for the category are deleted, and
// transactions keep their rows with the category reference nulled.
func (h *Handler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(context.Background(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		slog.Error("DeleteCategory failed", "error", err, "category_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// === DTO ===

type CategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
	Type string `json:"type" validate:"required,oneof=income expense"`
}
