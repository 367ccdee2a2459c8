package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const (
	selectTransactionColumns = `SELECT id, user_id, amount, type, category, date, description, created_at, updated_at FROM transactions`
	insertTransaction        = `INSERT INTO transactions
        (id, user_id, amount, type, category, date, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Category, &t.Date, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, err
}

func transactionArgs(t domain.Transaction) []interface{} {
	return []interface{}{t.ID, t.UserID, t.Amount, t.Type, t.Category, t.Date.UTC(), t.Description, t.CreatedAt.UTC(), t.UpdatedAt.UTC()}
}

func (r *TransactionRepository) Save(ctx context.Context, transaction domain.Transaction) error {
	if _, err := r.db.ExecContext(ctx, insertTransaction, transactionArgs(transaction)...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// SaveBatch inserts all transactions in a single database transaction.
func (r *TransactionRepository) SaveBatch(ctx context.Context, transactions []domain.Transaction) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			safeRollback(ctx, tx)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range transactions {
		if _, err = stmt.ExecContext(ctx, transactionArgs(t)...); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func safeRollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.FromContext(ctx).Warn("rollback failed", logging.FieldError, err)
	}
}

func (r *TransactionRepository) FindByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransactionColumns+` WHERE id = $1 AND user_id = $2`, transactionID, userID)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, transaction domain.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
        SET amount = $1, type = $2, category = $3, date = $4, description = $5, updated_at = $6
        WHERE id = $7 AND user_id = $8`,
		transaction.Amount, transaction.Type, transaction.Category, transaction.Date.UTC(), transaction.Description,
		transaction.UpdatedAt.UTC(), transaction.ID, transaction.UserID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectAffected(res, financeErrors.ErrTransactionNotFound)
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, transactionID, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectAffected(res, financeErrors.ErrTransactionNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// whereClause builds the shared filter for listing and counting.
func whereClause(userID string, filter domain.TransactionFilter) (string, []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	add := func(condition string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.StartDate != nil {
		add("date >= $%d", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		add("date < $%d", filter.EndDate.UTC())
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	where, args := whereClause(userID, filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := selectTransactionColumns + where + fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	transactions, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *TransactionRepository) FindInDateRange(ctx context.Context, userID string, start, end time.Time) ([]domain.Transaction, error) {
	return r.query(ctx,
		selectTransactionColumns+` WHERE user_id = $1 AND date >= $2 AND date < $3 ORDER BY date DESC, created_at DESC`,
		userID, start.UTC(), end.UTC(),
	)
}

func (r *TransactionRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
