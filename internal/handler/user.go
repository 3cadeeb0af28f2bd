// internal/handler/user.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	fieldErrors := validateStruct(req)
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	if _, ok := fieldErrors["password"]; !ok && req.Password != req.ConfirmPassword {
		fieldErrors["password"] = "Passwords do not match."
	}
	if len(fieldErrors) > 0 {
		badRequest(c, fieldErrors)
		return
	}

	department := domain.Department(req.Department)
	if department == "" {
		department = domain.DepartmentOther
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	user := domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Location:     req.Location,
		Bio:          req.Bio,
		Department:   department,
		Role:         domain.RoleEmployee,
	}

	if _, err := h.store.CreateUser(context.Background(), &user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			badRequest(c, map[string]string{"email": "A user with this email already exists."})
			return
		}
		slog.Error("Failed to create user", "error", err, "email", req.Email)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		badRequest(c, fieldErrors)
		return
	}

	user, err := h.store.UserByEmail(context.Background(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		slog.Error("Login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		slog.Error("Token generation failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.store.UserByID(context.Background(), userID)
	if err != nil {
		slog.Error("Me lookup failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe rewrites the profile fields. Email and role stay as they are.
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		badRequest(c, fieldErrors)
		return
	}

	user, err := h.store.UserByID(context.Background(), userID)
	if err != nil {
		slog.Error("Profile lookup failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	user.Location = req.Location
	user.Bio = req.Bio
	if req.Department != "" {
		user.Department = domain.Department(req.Department)
	}
	if req.TelegramChatID != nil {
		user.TelegramChatID = req.TelegramChatID
	}

	if err := h.store.UpdateProfile(context.Background(), user); err != nil {
		slog.Error("Profile update failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if fieldErrors := validateStruct(req); fieldErrors != nil {
		badRequest(c, fieldErrors)
		return
	}

	user, err := h.store.UserByID(context.Background(), userID)
	if err != nil {
		slog.Error("ChangePassword lookup failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		badRequest(c, map[string]string{"current_password": "Current password is incorrect."})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		badRequest(c, map[string]string{"confirm_password": "New passwords do not match."})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if err := h.store.UpdatePassword(context.Background(), userID, hash); err != nil {
		slog.Error("Password update failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	slog.Info("Password changed", "user_id", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// === DTO ===

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FirstName       string `json:"first_name" validate:"omitempty,max=150"`
	LastName        string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=20"`
	Location        string `json:"location" validate:"omitempty,max=100"`
	Bio             string `json:"bio"`
	Department      string `json:"department" validate:"omitempty,oneof=engineering finance hr marketing sales other"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName      string `json:"first_name" validate:"omitempty,max=150"`
	LastName       string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber    string `json:"phone_number" validate:"omitempty,max=20"`
	Location       string `json:"location" validate:"omitempty,max=100"`
	Bio            string `json:"bio"`
	Department     string `json:"department" validate:"omitempty,oneof=engineering finance hr marketing sales other"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}
