// internal/handler/handler.go
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/storage"
	val "finance-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	store  storage.Storage
	tokens *auth.TokenService
}

func New(store storage.Storage, tokens *auth.TokenService) *Handler {
	return &Handler{store: store, tokens: tokens}
}

// Mount registers all routes. Everything under /api/v1 requires a Bearer
// token; /register and /login are public.
func (h *Handler) Mount(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		v1.GET("/me", h.Me)
		v1.PUT("/me", h.UpdateMe)
		v1.POST("/change-password", h.ChangePassword)

		v1.GET("/categories", h.ListCategories)
		v1.POST("/categories", h.CreateCategory)
		v1.GET("/categories/:id", h.GetCategory)
		v1.PUT("/categories/:id", h.UpdateCategory)
		v1.DELETE("/categories/:id", h.DeleteCategory)

		v1.GET("/transactions", h.ListTransactions)
		v1.POST("/transactions", h.CreateTransaction)
		v1.GET("/transactions/:id", h.GetTransaction)
		v1.PUT("/transactions/:id", h.UpdateTransaction)
		v1.DELETE("/transactions/:id", h.DeleteTransaction)

		v1.GET("/budgets", h.ListBudgets)
		v1.POST("/budgets", h.SetBudget)
		v1.GET("/budgets/:id", h.GetBudget)
		v1.PUT("/budgets/:id", h.UpdateBudget)
		v1.PATCH("/budgets/:id", h.UpdateBudget)
		v1.DELETE("/budgets/:id", h.DeleteBudget)
	}
}

// currentUserID reads the id the auth middleware stored. Missing means a
// wiring bug, not a client error.
func currentUserID(c *gin.Context) (int64, bool) {
	userIDVal, ok := c.Get("user_id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user_id missing"})
		return 0, false
	}
	userID, ok := userIDVal.(int64)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return userID, true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// validateStruct returns one message per failed field, keyed by the json
// field name. nil means the struct passed.
func validateStruct(v any) map[string]string {
	err := val.Validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrors := make(map[string]string)
	for _, e := range err.(validator.ValidationErrors) {
		fieldErrors[e.Field()] = fieldErrorMessage(e)
	}
	return fieldErrors
}

func fieldErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", e.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", e.Param())
	case "notblank":
		return "Must not be blank."
	case "dateonly":
		return "Must be a date in YYYY-MM-DD format."
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s.", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", e.Param())
	default:
		return "Invalid value."
	}
}

func badRequest(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
}
