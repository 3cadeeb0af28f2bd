// internal/storage/memory/memory.go
// Package memory is an in-memory Storage implementation with the same
// semantics as the postgres store, including the budget key-tuple
// uniqueness. It backs handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/shopspring/decimal"
)

type Storage struct {
	mu sync.Mutex

	users        map[int64]domain.User
	categories   map[int64]domain.Category
	transactions map[int64]domain.Transaction
	budgets      map[int64]domain.Budget
	nextID       int64
}

func NewStorage() *Storage {
	return &Storage{
		users:        make(map[int64]domain.User),
		categories:   make(map[int64]domain.Category),
		transactions: make(map[int64]domain.Transaction),
		budgets:      make(map[int64]domain.Budget),
	}
}

func (s *Storage) id() int64 {
	s.nextID++
	return s.nextID
}

// === UserStorage ===

func (s *Storage) CreateUser(_ context.Context, u *domain.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return 0, storage.ErrEmailTaken
		}
	}
	u.ID = s.id()
	u.CreatedAt = time.Now()
	s.users[u.ID] = *u
	return u.ID, nil
}

func (s *Storage) UserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Storage) UserByTelegramChatID(_ context.Context, chatID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Storage) UpdateProfile(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.PhoneNumber = u.PhoneNumber
	existing.Location = u.Location
	existing.Bio = u.Bio
	existing.Department = u.Department
	existing.TelegramChatID = u.TelegramChatID
	s.users[u.ID] = existing
	return nil
}

func (s *Storage) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[userID] = u
	return nil
}

// === CategoryStorage ===

func (s *Storage) CreateCategory(_ context.Context, c *domain.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.categories[c.ID] = *c
	return c.ID, nil
}

func (s *Storage) CategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (s *Storage) CategoriesForUser(_ context.Context, userID int64) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var categories []domain.Category
	for _, c := range s.categories {
		if c.VisibleTo(userID) {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *Storage) CategoryNameExists(_ context.Context, userID int64, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.UserID != nil && *c.UserID == userID && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) UpdateCategory(_ context.Context, userID int64, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok || existing.UserID == nil || *existing.UserID != userID {
		return storage.ErrNotFound
	}
	existing.Name = c.Name
	existing.Type = c.Type
	s.categories[c.ID] = existing
	return nil
}

func (s *Storage) DeleteCategory(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[id]
	if !ok || existing.UserID == nil || *existing.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.categories, id)

	// Mirror the schema: cascade budgets, null out transactions.
	for bid, b := range s.budgets {
		if b.CategoryID == id {
			delete(s.budgets, bid)
		}
	}
	for tid, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
			s.transactions[tid] = t
		}
	}
	return nil
}

// === TransactionStorage ===

func (s *Storage) CreateTransaction(_ context.Context, t *domain.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.transactions[t.ID] = *t
	return t.ID, nil
}

func (s *Storage) TransactionByID(_ context.Context, userID, id int64) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *Storage) TransactionsForUser(_ context.Context, userID int64, f storage.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var transactions []domain.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		// ISO dates compare lexicographically.
		if f.StartDate != "" && t.TransactionDate < f.StartDate {
			continue
		}
		if f.EndDate != "" && t.TransactionDate > f.EndDate {
			continue
		}
		transactions = append(transactions, t)
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].TransactionDate != transactions[j].TransactionDate {
			return transactions[i].TransactionDate > transactions[j].TransactionDate
		}
		return transactions[i].ID > transactions[j].ID
	})
	return transactions, nil
}

func (s *Storage) UpdateTransaction(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return storage.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	s.transactions[t.ID] = *t
	return nil
}

func (s *Storage) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Storage) MonthlySummary(_ context.Context, userID int64, year, month int) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range s.transactions {
		if t.UserID != userID || !inMonth(t.TransactionDate, year, month) {
			continue
		}
		if t.Type == domain.EntryIncome {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense, nil
}

func inMonth(date string, year, month int) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return d.Year() == year && int(d.Month()) == month
}

// === BudgetStorage ===

func (s *Storage) UpsertBudget(_ context.Context, b *domain.Budget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.budgetByKeyLocked(b.UserID, b.CategoryID, b.Month, b.Year); existing != nil {
		existing.AmountLimit = b.AmountLimit
		s.budgets[existing.ID] = *existing
		*b = *existing
		return false, nil
	}
	b.ID = s.id()
	s.budgets[b.ID] = *b
	return true, nil
}

func (s *Storage) budgetByKeyLocked(userID, categoryID int64, month, year int) *domain.Budget {
	for _, b := range s.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month == month && b.Year == year {
			found := b
			return &found
		}
	}
	return nil
}

func (s *Storage) BudgetByID(_ context.Context, userID, id int64) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (s *Storage) BudgetByKey(_ context.Context, userID, categoryID int64, month, year int) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.budgetByKeyLocked(userID, categoryID, month, year); b != nil {
		return b, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Storage) BudgetsForUser(_ context.Context, userID int64) ([]domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var budgets []domain.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Year != budgets[j].Year {
			return budgets[i].Year > budgets[j].Year
		}
		if budgets[i].Month != budgets[j].Month {
			return budgets[i].Month > budgets[j].Month
		}
		return budgets[i].ID < budgets[j].ID
	})
	return budgets, nil
}

func (s *Storage) UpdateBudget(_ context.Context, b *domain.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.budgets[b.ID]
	if !ok || existing.UserID != b.UserID {
		return storage.ErrNotFound
	}
	if other := s.budgetByKeyLocked(b.UserID, b.CategoryID, b.Month, b.Year); other != nil && other.ID != b.ID {
		return storage.ErrBudgetConflict
	}
	s.budgets[b.ID] = *b
	return nil
}

func (s *Storage) DeleteBudget(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Storage) BudgetUsage(_ context.Context, userID int64, year, month int) ([]domain.BudgetUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var usages []domain.BudgetUsage
	for _, b := range s.budgets {
		if b.UserID != userID || b.Year != year || b.Month != month {
			continue
		}
		spent := decimal.Zero
		for _, t := range s.transactions {
			if t.UserID == userID && t.Type == domain.EntryExpense &&
				t.CategoryID != nil && *t.CategoryID == b.CategoryID &&
				inMonth(t.TransactionDate, year, month) {
				spent = spent.Add(t.Amount)
			}
		}
		name := ""
		if c, ok := s.categories[b.CategoryID]; ok {
			name = c.Name
		}
		usages = append(usages, domain.BudgetUsage{
			CategoryName: name,
			AmountLimit:  b.AmountLimit,
			Spent:        spent,
		})
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].CategoryName < usages[j].CategoryName })
	return usages, nil
}
