// internal/storage/memory/memory_test.go
package memory

import (
	"context"
	"testing"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUserAndCategory(t *testing.T, s *Storage) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{Email: "alice@example.com", Department: domain.DepartmentOther, Role: domain.RoleEmployee}
	userID, err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	category := &domain.Category{Name: "Dining", Type: domain.EntryExpense, UserID: &userID}
	categoryID, err := s.CreateCategory(ctx, category)
	require.NoError(t, err)
	return userID, categoryID
}

func TestUpsertBudget(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	userID, categoryID := seedUserAndCategory(t, s)

	first := &domain.Budget{
		UserID: userID, CategoryID: categoryID, Month: 3, Year: 2025,
		AmountLimit: decimal.RequireFromString("300.00"),
	}
	created, err := s.UpsertBudget(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotZero(t, first.ID)

	// Same tuple again: redirected onto the existing row.
	second := &domain.Budget{
		UserID: userID, CategoryID: categoryID, Month: 3, Year: 2025,
		AmountLimit: decimal.RequireFromString("450.00"),
	}
	created, err = s.UpsertBudget(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	stored, err := s.BudgetByID(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.AmountLimit.Equal(decimal.RequireFromString("450.00")))

	budgets, err := s.BudgetsForUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
}

func TestUpdateBudget_Conflict(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	userID, categoryID := seedUserAndCategory(t, s)

	march := &domain.Budget{UserID: userID, CategoryID: categoryID, Month: 3, Year: 2025,
		AmountLimit: decimal.RequireFromString("300.00")}
	_, err := s.UpsertBudget(ctx, march)
	require.NoError(t, err)

	april := &domain.Budget{UserID: userID, CategoryID: categoryID, Month: 4, Year: 2025,
		AmountLimit: decimal.RequireFromString("200.00")}
	_, err = s.UpsertBudget(ctx, april)
	require.NoError(t, err)

	moved := *april
	moved.Month = 3
	err = s.UpdateBudget(ctx, &moved)
	assert.ErrorIs(t, err, storage.ErrBudgetConflict)

	// Updating a budget onto its own tuple is fine.
	sameTuple := *april
	sameTuple.AmountLimit = decimal.RequireFromString("250.00")
	require.NoError(t, s.UpdateBudget(ctx, &sameTuple))
}

func TestMonthlySummary(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	userID, categoryID := seedUserAndCategory(t, s)

	add := func(typ domain.EntryType, date, amount string) {
		_, err := s.CreateTransaction(ctx, &domain.Transaction{
			UserID: userID, Title: "t", Type: typ, CategoryID: &categoryID,
			TransactionDate: date, Amount: decimal.RequireFromString(amount),
		})
		require.NoError(t, err)
	}
	add(domain.EntryIncome, "2025-03-01", "1000.00")
	add(domain.EntryExpense, "2025-03-15", "250.00")
	add(domain.EntryExpense, "2025-03-20", "100.00")
	add(domain.EntryExpense, "2025-04-01", "999.00") // outside the month

	income, expense, err := s.MonthlySummary(ctx, userID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, expense.Equal(decimal.RequireFromString("350.00")))
}

func TestBudgetUsage(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	userID, categoryID := seedUserAndCategory(t, s)

	_, err := s.UpsertBudget(ctx, &domain.Budget{
		UserID: userID, CategoryID: categoryID, Month: 3, Year: 2025,
		AmountLimit: decimal.RequireFromString("300.00"),
	})
	require.NoError(t, err)

	_, err = s.CreateTransaction(ctx, &domain.Transaction{
		UserID: userID, Title: "lunch", Type: domain.EntryExpense, CategoryID: &categoryID,
		TransactionDate: "2025-03-10", Amount: decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)

	usages, err := s.BudgetUsage(ctx, userID, 2025, 3)
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, "Dining", usages[0].CategoryName)
	assert.True(t, usages[0].Spent.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, usages[0].AmountLimit.Equal(decimal.RequireFromString("300.00")))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, &domain.User{Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, &domain.User{Email: "Alice@Example.com"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}
