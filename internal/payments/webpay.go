package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andesalud/citas-platform/pkg/logging"
)

var webpayTracer = otel.Tracer("citas.internal.payments.webpay")

const webpayTransactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// WebpayClient talks to the Transbank Webpay Plus REST API. Commerce
// code and API key are sent on every request as Tbk headers.
type WebpayClient struct {
	commerceCode string
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	logger       *logging.Logger
}

func NewWebpayClient(commerceCode, apiKey string, logger *logging.Logger) *WebpayClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebpayClient{
		commerceCode: commerceCode,
		apiKey:       apiKey,
		baseURL:      "https://webpay3g.transbank.cl",
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// WithBaseURL overrides the Transbank host (e.g. the integration
// environment, or a test server).
func (c *WebpayClient) WithBaseURL(baseURL string) *WebpayClient {
	if baseURL == "" {
		return c
	}
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *WebpayClient) Create(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	ctx, span := webpayTracer.Start(ctx, "webpay.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("citas.buy_order", req.BuyOrder),
		attribute.Int("citas.amount", req.Amount),
	)

	body, err := json.Marshal(map[string]any{
		"buy_order":  req.BuyOrder,
		"session_id": req.SessionID,
		"amount":     req.Amount,
		"return_url": req.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("webpay payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+webpayTransactionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webpay request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: create: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read create response: %v", ErrGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("webpay create failed",
			"status", resp.StatusCode,
			"body", string(raw),
		)
		return nil, fmt.Errorf("%w: create returned %d", ErrGateway, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode create response: %v", ErrGateway, err)
	}
	if out.Token == "" || out.URL == "" {
		return nil, fmt.Errorf("%w: create returned empty token or url", ErrGateway)
	}
	return &ChargeResponse{Token: out.Token, URL: out.URL}, nil
}

func (c *WebpayClient) Commit(ctx context.Context, token string) (*CommitResult, error) {
	ctx, span := webpayTracer.Start(ctx, "webpay.commit")
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+webpayTransactionsPath+"/"+token, nil)
	if err != nil {
		return nil, fmt.Errorf("webpay request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read commit response: %v", ErrGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("webpay commit failed",
			"status", resp.StatusCode,
			"body", string(raw),
		)
		return nil, fmt.Errorf("%w: commit returned %d", ErrGateway, resp.StatusCode)
	}

	var out struct {
		ResponseCode int `json:"response_code"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode commit response: %v", ErrGateway, err)
	}
	return &CommitResult{
		ResponseCode: out.ResponseCode,
		Authorized:   out.ResponseCode == 0,
	}, nil
}

func (c *WebpayClient) setHeaders(req *http.Request) {
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
