// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"finance-tracker/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
	// ErrBudgetConflict means a write would produce a second budget for an
	// already occupied (user, category, month, year) tuple.
	ErrBudgetConflict = errors.New("budget already exists for this category and period")
)

type UserStorage interface {
	CreateUser(ctx context.Context, u *domain.User) (int64, error)
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UserByTelegramChatID(ctx context.Context, chatID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type CategoryStorage interface {
	CreateCategory(ctx context.Context, c *domain.Category) (int64, error)
	CategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	// CategoriesForUser returns the user's own categories plus global ones.
	CategoriesForUser(ctx context.Context, userID int64) ([]domain.Category, error)
	CategoryNameExists(ctx context.Context, userID int64, name string) (bool, error)
	UpdateCategory(ctx context.Context, userID int64, c *domain.Category) error
	DeleteCategory(ctx context.Context, userID, id int64) error
}

// TransactionFilter narrows a transaction listing; empty bounds are open.
// Dates are YYYY-MM-DD and both bounds are inclusive.
type TransactionFilter struct {
	StartDate string
	EndDate   string
}

type TransactionStorage interface {
	CreateTransaction(ctx context.Context, t *domain.Transaction) (int64, error)
	TransactionByID(ctx context.Context, userID, id int64) (*domain.Transaction, error)
	TransactionsForUser(ctx context.Context, userID int64, f TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, t *domain.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	// MonthlySummary totals income and expense amounts for one month.
	MonthlySummary(ctx context.Context, userID int64, year, month int) (income, expense decimal.Decimal, err error)
}

type BudgetStorage interface {
	// UpsertBudget atomically creates the budget or redirects the write onto
	// the existing row for the same key tuple. It fills b.ID and reports
	// whether a new row was inserted.
	UpsertBudget(ctx context.Context, b *domain.Budget) (created bool, err error)
	BudgetByID(ctx context.Context, userID, id int64) (*domain.Budget, error)
	BudgetByKey(ctx context.Context, userID, categoryID int64, month, year int) (*domain.Budget, error)
	BudgetsForUser(ctx context.Context, userID int64) ([]domain.Budget, error)
	// UpdateBudget rewrites all fields of an existing budget. It returns
	// ErrBudgetConflict when the new key tuple collides with another row.
	UpdateBudget(ctx context.Context, b *domain.Budget) error
	DeleteBudget(ctx context.Context, userID, id int64) error
	BudgetUsage(ctx context.Context, userID int64, year, month int) ([]domain.BudgetUsage, error)
}

type Storage interface {
	UserStorage
	CategoryStorage
	TransactionStorage
	BudgetStorage
}
