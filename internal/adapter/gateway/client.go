// Package gateway talks to the external payment gateway: order creation over
// HTTP and verification of the checkout signature returned to the buyer.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
)

var ErrGatewayRejected = errors.New("payment gateway rejected the request")

type CreateOrderRequest struct {
	Receipt string
	Amount  float64
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	// VerifySignature checks the signature the gateway hands to the client
	// after a successful checkout.
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

type httpGateway struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	log       logger.Logger
}

func NewHTTPGateway(cfg config.PaymentConfig, log logger.Logger) PaymentGateway {
	return &httpGateway{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  cfg.Currency,
		log:       log.Named("PaymentGateway"),
	}
}

type createOrderBody struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (g *httpGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	body, err := json.Marshal(createOrderBody{
		Amount:   pricing.MinorUnits(req.Amount),
		Currency: g.currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.log.Warnf("gateway returned %d for receipt %s: %s", resp.StatusCode, req.Receipt, string(payload))
		return nil, fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: response carries no order id", ErrGatewayRejected)
	}
	g.log.Infof("gateway order %s created for receipt %s", order.ID, req.Receipt)
	return &order, nil
}

func (g *httpGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, gatewayOrderID, paymentID, signature)
}

func (g *httpGateway) KeyID() string { return g.keyID }

func (g *httpGateway) Currency() string { return g.currency }

// Sign returns hex(HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID)).
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
