package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrCaptureDeclined = errors.New("payment capture declined")

// Gateway is the external payment-capture collaborator. Capture must succeed
// before the order commits its PAID transition; a gateway failure leaves the
// order untouched.
type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}

type CaptureRequest struct {
	OrderID       uint            `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CardReference string          `json:"card_reference"`
}

type CaptureResult struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type httpGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("payment gateway API key is empty")
	}

	return &httpGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *httpGateway) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "http"),
		zap.Uint("order_id", req.OrderID),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.baseURL+"/v1/captures", bytes.NewBuffer(jsonBody),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("capture request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		log.Warn("capture declined", zap.Int("status", resp.StatusCode))
		return nil, ErrCaptureDeclined
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("unexpected gateway response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var result CaptureResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	log.Info("payment captured", zap.String("transaction_id", result.TransactionID))
	return &result, nil
}
