// internal/storage/postgres/budgets.go
package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/jackc/pgx/v5"
)

// UpsertBudget is a single atomic statement, so two concurrent creates for
// the same fresh tuple converge on one row: the loser's INSERT turns into
// an UPDATE of the winner's row. (xmax = 0) distinguishes insert from update.
func (s *Storage) UpsertBudget(ctx context.Context, b *domain.Budget) (bool, error) {
	var created bool
	err := s.db.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, month, year, amount_limit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category_id, month, year)
		DO UPDATE SET amount_limit = EXCLUDED.amount_limit
		RETURNING id, (xmax = 0)
	`, b.UserID, b.CategoryID, b.Month, b.Year, b.AmountLimit.StringFixed(2),
	).Scan(&b.ID, &created)
	if err != nil {
		return false, fmt.Errorf("upsert budget: %w", err)
	}
	return created, nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var amountStr string
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Month, &b.Year, &amountStr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	b.AmountLimit, err = parseDecimal(amountStr)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const budgetColumns = `id, user_id, category_id, month, year, amount_limit::text`

func (s *Storage) BudgetByID(ctx context.Context, userID, id int64) (*domain.Budget, error) {
	return scanBudget(s.db.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`,
		id, userID))
}

func (s *Storage) BudgetByKey(ctx context.Context, userID, categoryID int64, month, year int) (*domain.Budget, error) {
	return scanBudget(s.db.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND category_id = $2 AND month = $3 AND year = $4
	`, userID, categoryID, month, year))
}

func (s *Storage) BudgetsForUser(ctx context.Context, userID int64) ([]domain.Budget, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1
		ORDER BY year DESC, month DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// UpdateBudget rewrites an existing budget in place. A racing writer that
// already occupies the target tuple trips the unique index; that is
// surfaced as ErrBudgetConflict rather than a bare SQL error.
func (s *Storage) UpdateBudget(ctx context.Context, b *domain.Budget) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE budgets
		SET category_id = $1, month = $2, year = $3, amount_limit = $4
		WHERE id = $5 AND user_id = $6
	`, b.CategoryID, b.Month, b.Year, b.AmountLimit.StringFixed(2), b.ID, b.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrBudgetConflict
		}
		return fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteBudget(ctx context.Context, userID, id int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) BudgetUsage(ctx context.Context, userID int64, year, month int) ([]domain.BudgetUsage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.name, b.amount_limit::text,
			COALESCE((
				SELECT SUM(t.amount) FROM transactions t
				WHERE t.user_id = b.user_id
					AND t.category_id = b.category_id
					AND t.type = 'expense'
					AND t.transaction_date >= make_date(b.year, b.month, 1)
					AND t.transaction_date < make_date(b.year, b.month, 1) + interval '1 month'
			), 0)::text
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = $1 AND b.year = $2 AND b.month = $3
		ORDER BY c.name
	`, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("budget usage: %w", err)
	}
	defer rows.Close()

	var usages []domain.BudgetUsage
	for rows.Next() {
		var u domain.BudgetUsage
		var limitStr, spentStr string
		if err := rows.Scan(&u.CategoryName, &limitStr, &spentStr); err != nil {
			return nil, fmt.Errorf("scan budget usage: %w", err)
		}
		if u.AmountLimit, err = parseDecimal(limitStr); err != nil {
			return nil, err
		}
		if u.Spent, err = parseDecimal(spentStr); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
