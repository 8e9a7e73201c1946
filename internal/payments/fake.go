package payments

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FakeGateway approves everything without leaving the process. It is
// only wired when ALLOW_FAKE_GATEWAY is set and the environment is not
// production, so local stacks can exercise the full booking flow
// without Transbank credentials.
type FakeGateway struct {
	mu     sync.Mutex
	tokens map[string]string // token -> buy order
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{tokens: make(map[string]string)}
}

func (g *FakeGateway) Create(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	token := "fake_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	g.mu.Lock()
	g.tokens[token] = req.BuyOrder
	g.mu.Unlock()
	return &ChargeResponse{
		Token: token,
		URL:   req.ReturnURL + "?fake=1",
	}, nil
}

func (g *FakeGateway) Commit(ctx context.Context, token string) (*CommitResult, error) {
	g.mu.Lock()
	_, ok := g.tokens[token]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown fake token", ErrGateway)
	}
	return &CommitResult{ResponseCode: 0, Authorized: true}, nil
}
