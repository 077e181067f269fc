package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))

	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("connection refused")))
	assert.False(t, IsRetryable(nil))
}

func TestIsRetryable_wrapped(t *testing.T) {
	err := fmt.Errorf("same-day check: %w", &pgconn.PgError{Code: "40001"})
	assert.True(t, IsRetryable(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23505"})))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestNewRepositories(t *testing.T) {
	assert.NotNil(t, NewFlightRepository(nil))
	assert.NotNil(t, NewReservationRepository(nil))
	assert.NotNil(t, NewUserRepository(nil))
}
