package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andesalud/citas-platform/pkg/logging"
)

// PgxPool is the transactional subset of *pgxpool.Pool the engine needs.
// pgxmock satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresEngine reserves slots inside a single transaction using a row
// lock on the slot, so two concurrent reservations of the same slot
// serialize and the second one sees is_reserved already set.
type PostgresEngine struct {
	pool   PgxPool
	logger *logging.Logger
}

func NewPostgresEngine(pool PgxPool, logger *logging.Logger) *PostgresEngine {
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresEngine{pool: pool, logger: logger}
}

func (e *PostgresEngine) Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error) {
	ctx, span := reservationTracer.Start(ctx, "reservations.reserve")
	defer span.End()
	span.SetAttributes(attribute.String("citas.slot_id", slotID.String()))

	if patientID == uuid.Nil {
		return nil, errors.New("reservations: patient id required")
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		medicID  uuid.UUID
		startsAt time.Time
		endsAt   time.Time
		reserved bool
	)
	err = tx.QueryRow(ctx,
		`SELECT medic_id, starts_at, ends_at, is_reserved
		   FROM available_slots
		  WHERE id = $1
		    FOR UPDATE`,
		slotID,
	).Scan(&medicID, &startsAt, &endsAt, &reserved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}
	if reserved {
		return nil, ErrSlotUnavailable
	}

	if _, err := tx.Exec(ctx,
		`UPDATE available_slots SET is_reserved = TRUE, updated_at = NOW() WHERE id = $1`,
		slotID,
	); err != nil {
		return nil, fmt.Errorf("mark slot reserved: %w", err)
	}

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		MedicID:   medicID,
		SlotID:    slotID,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Status:    StatusPending,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (id, patient_id, medic_id, slot_id, starts_at, ends_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		appt.ID, appt.PatientID, appt.MedicID, appt.SlotID, appt.StartsAt, appt.EndsAt, string(appt.Status),
	).Scan(&appt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	e.logger.Info("slot reserved",
		"slot_id", slotID,
		"appointment_id", appt.ID,
		"medic_id", medicID,
	)
	return appt, nil
}

func (e *PostgresEngine) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt := &Appointment{ID: id}
	var status string
	err := e.pool.QueryRow(ctx,
		`SELECT patient_id, medic_id, slot_id, starts_at, ends_at, status, created_at
		   FROM appointments
		  WHERE id = $1`,
		id,
	).Scan(&appt.PatientID, &appt.MedicID, &appt.SlotID, &appt.StartsAt, &appt.EndsAt, &status, &appt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	appt.Status = Status(status)
	return appt, nil
}

func (e *PostgresEngine) SetAppointmentStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := e.pool.Exec(ctx,
		`UPDATE appointments SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
