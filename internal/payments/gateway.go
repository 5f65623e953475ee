package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"gatherly/internal/shared/config"
)

var (
	// ErrGatewayUnavailable covers timeouts, transport failures, non-2xx
	// responses and invalid checksums. Callers must leave the booking
	// PENDING when they see it: a later trigger can still resolve it.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// StatusResult is the normalized answer to a status query or callback
type StatusResult struct {
	OrderID       string
	Success       bool
	Code          string
	ProviderTxnID string
	AmountMinor   int64
}

// Gateway talks to the external payment provider
type Gateway interface {
	// Initiate registers a payment and returns the URL the customer's
	// browser should be sent to.
	Initiate(ctx context.Context, orderID string, amountMinor int64) (string, error)

	// QueryStatus asks the provider for the authoritative state of an
	// order. Used by the verify endpoint and the redirect handler, which
	// never trusts redirect parameters alone.
	QueryStatus(ctx context.Context, orderID string) (*StatusResult, error)

	// DecodeCallback verifies and decodes an inbound webhook body
	DecodeCallback(base64Response, xVerify string) (*StatusResult, error)
}

type httpGateway struct {
	cfg    config.GatewayConfig
	client *http.Client
}

// NewGateway builds the HTTP gateway adapter. Every outbound call is
// bounded by the configured timeout.
func NewGateway(cfg config.GatewayConfig) Gateway {
	return &httpGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// initiatePayload is the provider's payment-initiation body, carried
// base64-encoded inside a {"request": "..."} wrapper.
type initiatePayload struct {
	MerchantID            string         `json:"merchantId"`
	MerchantTransactionID string         `json:"merchantTransactionId"`
	Amount                int64          `json:"amount"`
	RedirectURL           string         `json:"redirectUrl"`
	RedirectMode          string         `json:"redirectMode"`
	CallbackURL           string         `json:"callbackUrl"`
	PaymentInstrument     map[string]any `json:"paymentInstrument"`
}

type gatewayEnvelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initiateData struct {
	InstrumentResponse struct {
		RedirectInfo struct {
			URL string `json:"url"`
		} `json:"redirectInfo"`
	} `json:"instrumentResponse"`
}

type statusData struct {
	MerchantTransactionID string `json:"merchantTransactionId"`
	TransactionID         string `json:"transactionId"`
	Amount                int64  `json:"amount"`
	State                 string `json:"state"`
}

func (g *httpGateway) Initiate(ctx context.Context, orderID string, amountMinor int64) (string, error) {
	payload := initiatePayload{
		MerchantID:            g.cfg.MerchantID,
		MerchantTransactionID: orderID,
		Amount:                amountMinor,
		RedirectURL:           fmt.Sprintf("%s?order_id=%s", g.cfg.RedirectURL, orderID),
		RedirectMode:          "REDIRECT",
		CallbackURL:           g.cfg.CallbackURL,
		PaymentInstrument:     map[string]any{"type": "PAY_PAGE"},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode initiate payload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+PayPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build initiate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", ComputeChecksum(encoded, PayPath, g.cfg.SaltKey, g.cfg.SaltIndex))

	envelope, err := g.do(req)
	if err != nil {
		return "", err
	}
	if !envelope.Success {
		return "", fmt.Errorf("%w: initiate rejected with code %s", ErrGatewayUnavailable, envelope.Code)
	}

	var data initiateData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return "", fmt.Errorf("%w: malformed initiate response", ErrGatewayUnavailable)
	}
	if data.InstrumentResponse.RedirectInfo.URL == "" {
		return "", fmt.Errorf("%w: initiate response missing redirect url", ErrGatewayUnavailable)
	}

	return data.InstrumentResponse.RedirectInfo.URL, nil
}

func (g *httpGateway) QueryStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	path := StatusPath(g.cfg.MerchantID, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-MERCHANT-ID", g.cfg.MerchantID)
	req.Header.Set("X-VERIFY", ComputeChecksum("", path, g.cfg.SaltKey, g.cfg.SaltIndex))

	envelope, err := g.do(req)
	if err != nil {
		return nil, err
	}

	var data statusData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: malformed status response", ErrGatewayUnavailable)
	}

	return &StatusResult{
		OrderID:       data.MerchantTransactionID,
		Success:       envelope.Success && envelope.Code == "PAYMENT_SUCCESS",
		Code:          envelope.Code,
		ProviderTxnID: data.TransactionID,
		AmountMinor:   data.Amount,
	}, nil
}

func (g *httpGateway) DecodeCallback(base64Response, xVerify string) (*StatusResult, error) {
	// An invalid checksum is treated exactly like an unreachable gateway:
	// the payload must not be processed.
	if !VerifyChecksum(xVerify, base64Response, "", g.cfg.SaltKey, g.cfg.SaltIndex) {
		return nil, fmt.Errorf("%w: callback checksum mismatch", ErrGatewayUnavailable)
	}

	raw, err := base64.StdEncoding.DecodeString(base64Response)
	if err != nil {
		return nil, fmt.Errorf("%w: callback body not base64", ErrGatewayUnavailable)
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed callback payload", ErrGatewayUnavailable)
	}

	var data statusData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: malformed callback data", ErrGatewayUnavailable)
	}
	if data.MerchantTransactionID == "" {
		return nil, fmt.Errorf("%w: callback missing order id", ErrGatewayUnavailable)
	}

	return &StatusResult{
		OrderID:       data.MerchantTransactionID,
		Success:       envelope.Success && envelope.Code == "PAYMENT_SUCCESS",
		Code:          envelope.Code,
		ProviderTxnID: data.TransactionID,
		AmountMinor:   data.Amount,
	}, nil
}

func (g *httpGateway) do(req *http.Request) (*gatewayEnvelope, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed reading response", ErrGatewayUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response body", ErrGatewayUnavailable)
	}
	return &envelope, nil
}
