// Package session resolves the acting customer from a session token.
// A missing or expired session is an error; bookings are never
// attributed to a placeholder customer id.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flight-booking-storefront/internal/database"
)

var ErrNoSession = errors.New("no active session")

type Store struct {
	DB *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{DB: db}
}

// CustomerID resolves the customer owning the given session token.
func (s *Store) CustomerID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}

	query := `
		SELECT customer_id
		FROM sessions
		WHERE token = ? AND expires_at > NOW()
	`

	var customerID string
	err := s.DB.QueryRowContext(ctx, query, token).Scan(&customerID)
	if err == sql.ErrNoRows {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}

	return customerID, nil
}
