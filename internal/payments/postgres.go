package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores payments in the payments table. A partial
// unique index on (appointment_id) WHERE status = 'pending' backs the
// single-open-payment rule at the schema level.
type PostgresRepository struct {
	db Querier
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *Payment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO payments (id, appointment_id, amount, webpay_token, status)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING created_at, updated_at`,
		p.ID, p.AppointmentID, p.Amount, p.Token, string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetToken(ctx context.Context, id uuid.UUID, token string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE payments SET webpay_token = $2, updated_at = NOW() WHERE id = $1`,
		id, token,
	)
	if err != nil {
		return fmt.Errorf("set payment token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Payment, error) {
	p := &Payment{Token: token}
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT id, appointment_id, amount, status, created_at, updated_at
		   FROM payments
		  WHERE webpay_token = $1`,
		token,
	).Scan(&p.ID, &p.AppointmentID, &p.Amount, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownToken
		}
		return nil, fmt.Errorf("get payment by token: %w", err)
	}
	p.Status = Status(status)
	return p, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PostgresRepository) HasPending(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM payments WHERE appointment_id = $1 AND status = 'pending'
		)`,
		appointmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending payment: %w", err)
	}
	return exists, nil
}
