package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkravets/flightdesk/internal/domain"
)

// UserRepository owns the users table. Balance is only mutated by the
// payment engine, through BalanceForUpdate followed by Debit inside one
// transaction.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	BalanceForUpdate(ctx context.Context, username string) (int, error)
	Debit(ctx context.Context, username string, amount int) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	const stmt = `INSERT INTO users (username, hashed_password, balance) VALUES ($1, $2, $3)`
	_, err := r.exec(ctx, stmt, user.Username, user.HashedPassword, user.Balance)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PGUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT username, hashed_password, balance FROM users WHERE username = $1`
	var user domain.User
	err := r.queryRow(ctx, query, username).Scan(&user.Username, &user.HashedPassword, &user.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoginFailed
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *PGUserRepository) BalanceForUpdate(ctx context.Context, username string) (int, error) {
	const query = `SELECT balance FROM users WHERE username = $1 FOR UPDATE`
	var balance int
	if err := r.queryRow(ctx, query, username).Scan(&balance); err != nil {
		return 0, fmt.Errorf("balance for update: %w", err)
	}
	return balance, nil
}

func (r *PGUserRepository) Debit(ctx context.Context, username string, amount int) error {
	const stmt = `UPDATE users SET balance = balance - $1 WHERE username = $2 AND balance >= $1`
	tag, err := r.exec(ctx, stmt, amount, username)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func (r *PGUserRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *PGUserRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.db.QueryRow(ctx, sql, args...)
}

var _ UserRepository = (*PGUserRepository)(nil)
