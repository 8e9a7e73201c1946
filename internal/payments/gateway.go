package payments

import "context"

// ChargeRequest is what the gateway needs to open a transaction.
type ChargeRequest struct {
	BuyOrder  string
	SessionID string
	Amount    int
	ReturnURL string
}

// ChargeResponse carries the hosted payment form handle. The patient is
// redirected to URL with the token appended as token_ws.
type ChargeResponse struct {
	Token string
	URL   string
}

// CommitResult is the settlement outcome. ResponseCode 0 means the
// charge was authorized; any other value is a rejection.
type CommitResult struct {
	ResponseCode int
	Authorized   bool
}

// Gateway is the payment provider boundary. WebpayClient implements it
// against Transbank; FakeGateway implements it for local development.
type Gateway interface {
	Create(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	Commit(ctx context.Context, token string) (*CommitResult, error)
}
