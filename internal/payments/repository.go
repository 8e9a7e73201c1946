package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists payment intents. HasPending backs the
// one-open-payment-per-appointment rule enforced by the coordinator.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	SetToken(ctx context.Context, id uuid.UUID, token string) error
	GetByToken(ctx context.Context, token string) (*Payment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	HasPending(ctx context.Context, appointmentID uuid.UUID) (bool, error)
}

// InMemoryRepository keeps payments in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*Payment
	byToken  map[string]uuid.UUID
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		payments: make(map[uuid.UUID]*Payment),
		byToken:  make(map[string]uuid.UUID),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	copied := *p
	r.payments[p.ID] = &copied
	if p.Token != "" {
		r.byToken[p.Token] = p.ID
	}
	return nil
}

func (r *InMemoryRepository) SetToken(ctx context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	p.Token = token
	p.UpdatedAt = time.Now().UTC()
	r.byToken[token] = id
	return nil
}

func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	copied := *r.payments[id]
	return &copied, nil
}

func (r *InMemoryRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) HasPending(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.AppointmentID == appointmentID && p.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}
