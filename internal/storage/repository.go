package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by single-row lookups when no row matches.
// Update/delete operations do NOT return it: a miss there is a silent
// zero-count, preserving the no-op-on-miss contract of the API.
var ErrNotFound = errors.New("not found")

// User is a registered account row. Reset token fields are set only
// while a password reset is pending.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ResetToken   sql.NullString
	ResetExpires sql.NullInt64
	CreatedAt    time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	var u User
	var created int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, email, password_hash, created_at`,
		name, email, passwordHash, time.Now().Unix(),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.getUser(ctx, `WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	return r.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByResetToken finds the user holding an unexpired reset token.
func (r *SQLiteRepository) GetUserByResetToken(ctx context.Context, token string, now time.Time) (User, error) {
	return r.getUser(ctx, `WHERE reset_token = ? AND reset_expires > ?`, token, now.Unix())
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, args ...any) (User, error) {
	var u User
	var created int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, reset_token, reset_expires, created_at
		FROM users `+where,
		args...,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ResetToken, &u.ResetExpires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

// SetResetToken stores a password reset token valid until expires.
func (r *SQLiteRepository) SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token = ?, reset_expires = ? WHERE id = ?`,
		token, expires.Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password hash and clears any pending
// reset token.
func (r *SQLiteRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_expires = NULL WHERE id = ?`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var date, created int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, text, amount_cents, category, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, text, amount_cents, category, date, created_at`,
		t.UserID, t.Text, t.Amount.Cents, core.NormalizeCategory(t.Category), t.Date.Unix(), time.Now().Unix(),
	).Scan(&t.ID, &t.UserID, &t.Text, &t.Amount.Cents, &t.Category, &date, &created)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.Date = time.Unix(date, 0)
	t.CreatedAt = time.Unix(created, 0)
	return t, nil
}

// ListTransactions returns the user's full ledger, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.listTransactions(ctx,
		`SELECT id, user_id, text, amount_cents, category, date, created_at
		 FROM transactions WHERE user_id = ?
		 ORDER BY date DESC, id DESC`,
		userID)
}

// ListTransactionsSince returns the user's transactions dated on or
// after since, newest first. This is the analytics window query.
func (r *SQLiteRepository) ListTransactionsSince(ctx context.Context, userID int64, since time.Time) ([]core.Transaction, error) {
	return r.listTransactions(ctx,
		`SELECT id, user_id, text, amount_cents, category, date, created_at
		 FROM transactions WHERE user_id = ? AND date >= ?
		 ORDER BY date DESC, id DESC`,
		userID, since.Unix())
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, created int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Amount.Cents, &t.Category, &date, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = time.Unix(date, 0)
		t.CreatedAt = time.Unix(created, 0)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// TransactionUpdate carries the fields an edit may change. A nil Date
// leaves the stored date untouched; an empty category becomes the
// default.
type TransactionUpdate struct {
	Text        string
	AmountCents int64
	Category    string
	Date        *time.Time
}

// UpdateTransaction edits a row only when it belongs to userID and
// returns the number of rows affected. A miss is zero, not an error.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id, userID int64, upd TransactionUpdate) (int64, error) {
	category := core.NormalizeCategory(upd.Category)

	var res sql.Result
	var err error
	if upd.Date != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE transactions SET text = ?, amount_cents = ?, category = ?, date = ?
			 WHERE id = ? AND user_id = ?`,
			upd.Text, upd.AmountCents, category, upd.Date.Unix(), id, userID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE transactions SET text = ?, amount_cents = ?, category = ?
			 WHERE id = ? AND user_id = ?`,
			upd.Text, upd.AmountCents, category, id, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return res.RowsAffected()
}

// DeleteTransaction removes a row only when it belongs to userID and
// returns the number of rows affected.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	return res.RowsAffected()
}

// --- budgets ---

// UpsertBudget creates or updates the single budget row for
// (user, category, period) in one statement. The unique index on the
// tuple plus ON CONFLICT makes concurrent upserts converge on one row,
// last write winning on the limit.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID int64, category string, limitCents int64, period core.Period) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, category, limit_cents, month, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, month, year)
		DO UPDATE SET limit_cents = excluded.limit_cents
		RETURNING id, user_id, category, limit_cents, month, year`,
		userID, category, limitCents, period.Month, period.Year, time.Now().Unix(),
	).Scan(&b.ID, &b.UserID, &b.Category, &b.Limit.Cents, &b.Period.Month, &b.Period.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns the user's budgets for one period.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category, limit_cents, month, year
		FROM budgets WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY id`,
		userID, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit.Cents, &b.Period.Month, &b.Period.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudgetLimit changes only the limit, never category or period,
// and only when the row belongs to userID. Returns rows affected.
func (r *SQLiteRepository) UpdateBudgetLimit(ctx context.Context, id, userID, limitCents int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET limit_cents = ? WHERE id = ? AND user_id = ?`,
		limitCents, id, userID)
	if err != nil {
		return 0, fmt.Errorf("update budget: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBudget removes a row only when it belongs to userID and
// returns the number of rows affected.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete budget: %w", err)
	}
	return res.RowsAffected()
}
