// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies money flow for categories and transactions.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryIncome, EntryExpense:
		return true
	}
	return false
}

type Department string

const (
	DepartmentEngineering Department = "engineering"
	DepartmentFinance     Department = "finance"
	DepartmentHR          Department = "hr"
	DepartmentMarketing   Department = "marketing"
	DepartmentSales       Department = "sales"
	DepartmentOther       Department = "other"
)

func (d Department) Valid() bool {
	switch d {
	case DepartmentEngineering, DepartmentFinance, DepartmentHR,
		DepartmentMarketing, DepartmentSales, DepartmentOther:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User logs in by email; there is no separate username.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	PhoneNumber    string     `json:"phone_number"`
	Location       string     `json:"location"`
	Bio            string     `json:"bio"`
	Department     Department `json:"department"`
	Role           Role       `json:"role"`
	TelegramChatID *int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Category with a nil UserID is global and visible to every user.
type Category struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Type   EntryType `json:"type"`
	UserID *int64    `json:"user_id"`
}

// VisibleTo reports whether userID may reference this category.
func (c *Category) VisibleTo(userID int64) bool {
	return c.UserID == nil || *c.UserID == userID
}

type Transaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Type       EntryType       `json:"type"`
	CategoryID *int64          `json:"category"`
	// TransactionDate is kept as YYYY-MM-DD; the store owns the date type.
	TransactionDate string    `json:"transaction_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Budget caps spending for one (user, category, month, year) tuple.
// The store enforces uniqueness of the tuple.
type Budget struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	CategoryID  int64           `json:"category"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	AmountLimit decimal.Decimal `json:"amount_limit"`
}

// BudgetUsage pairs a budget with the amount already spent in its period.
type BudgetUsage struct {
	CategoryName string          `json:"category_name"`
	AmountLimit  decimal.Decimal `json:"amount_limit"`
	Spent        decimal.Decimal `json:"spent"`
}
