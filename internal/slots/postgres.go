package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists the slot inventory in the relational database.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db Querier) *PostgresStore {
	if db == nil {
		panic("slots: querier required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, slot *Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	query := `
		INSERT INTO available_slots (id, medic_id, starts_at, ends_at, is_reserved)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING created_at, updated_at
	`
	if err := s.db.QueryRow(ctx, query, slot.ID, slot.MedicID, slot.StartsAt, slot.EndsAt).
		Scan(&slot.CreatedAt, &slot.UpdatedAt); err != nil {
		return fmt.Errorf("slots: insert failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateBatch(ctx context.Context, batch []Slot) (int, error) {
	created := 0
	for i := range batch {
		if err := s.Create(ctx, &batch[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	query := `
		SELECT id, medic_id, starts_at, ends_at, is_reserved, created_at, updated_at
		FROM available_slots
		WHERE id = $1
	`
	var slot Slot
	if err := s.db.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.MedicID,
		&slot.StartsAt,
		&slot.EndsAt,
		&slot.Reserved,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("slots: select failed: %w", err)
	}
	return &slot, nil
}

func (s *PostgresStore) ListOpenByMedics(ctx context.Context, medicIDs []uuid.UUID) ([]Slot, error) {
	if len(medicIDs) == 0 {
		return []Slot{}, nil
	}
	query := `
		SELECT id, medic_id, starts_at, ends_at, is_reserved, created_at, updated_at
		FROM available_slots
		WHERE medic_id = ANY($1) AND is_reserved = FALSE
		ORDER BY starts_at
	`
	rows, err := s.db.Query(ctx, query, medicIDs)
	if err != nil {
		return nil, fmt.Errorf("slots: list open failed: %w", err)
	}
	defer rows.Close()

	open := make([]Slot, 0)
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(
			&slot.ID,
			&slot.MedicID,
			&slot.StartsAt,
			&slot.EndsAt,
			&slot.Reserved,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("slots: scan failed: %w", err)
		}
		open = append(open, slot)
	}
	return open, rows.Err()
}
