// internal/storage/postgres/transactions.go
package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Storage) CreateTransaction(ctx context.Context, t *domain.Transaction) (int64, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO transactions (user_id, title, amount, type, category_id, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.Title, t.Amount.StringFixed(2), t.Type, t.CategoryID, t.TransactionDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return t.ID, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amountStr string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &amountStr, &t.Type,
		&t.CategoryID, &t.TransactionDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Amount, err = parseDecimal(amountStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const transactionColumns = `id, user_id, title, amount::text, type,
	category_id, transaction_date::text, created_at, updated_at`

func (s *Storage) TransactionByID(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	return scanTransaction(s.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID))
}

// TransactionsForUser lists the caller's transactions, optionally bounded
// by an inclusive transaction_date range.
func (s *Storage) TransactionsForUser(ctx context.Context, userID int64, f storage.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if f.StartDate != "" {
		args = append(args, f.StartDate)
		query += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		query += fmt.Sprintf(" AND transaction_date <= $%d", len(args))
	}
	query += " ORDER BY transaction_date DESC, id DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func (s *Storage) UpdateTransaction(ctx context.Context, t *domain.Transaction) error {
	err := s.db.QueryRow(ctx, `
		UPDATE transactions
		SET title = $1, amount = $2, type = $3, category_id = $4,
			transaction_date = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at
	`, t.Title, t.Amount.StringFixed(2), t.Type, t.CategoryID,
		t.TransactionDate, t.ID, t.UserID).Scan(&t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return storage.ErrNotFound
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *Storage) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) MonthlySummary(ctx context.Context, userID int64, year, month int) (decimal.Decimal, decimal.Decimal, error) {
	var incomeStr, expenseStr string
	err := s.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)::text
		FROM transactions
		WHERE user_id = $1
			AND transaction_date >= make_date($2, $3, 1)
			AND transaction_date < make_date($2, $3, 1) + interval '1 month'
	`, userID, year, month).Scan(&incomeStr, &expenseStr)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("monthly summary: %w", err)
	}

	income, err := parseDecimal(incomeStr)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	expense, err := parseDecimal(expenseStr)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return income, expense, nil
}
