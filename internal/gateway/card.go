package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/domain"
)

// Card talks to the card-network gateway. Outbound requests are authorized
// with the API secret; inbound webhooks are authenticated by an HMAC-SHA256
// signature over the raw body.
type Card struct {
	baseURL       string
	secret        string
	webhookSecret string
	httpClient    *http.Client
}

func NewCard(baseURL, secret, webhookSecret string) *Card {
	return &Card{
		baseURL:       baseURL,
		secret:        secret,
		webhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Card) Name() string { return "card" }

type cardSessionRequest struct {
	Reference     string         `json:"reference"`
	Currency      string         `json:"currency"`
	LineItems     []cardLineItem `json:"line_items"`
	ShippingCents int64          `json:"shipping_cents"`
	DiscountCents int64          `json:"discount_cents"`
	SuccessURL    string         `json:"success_url"`
	CancelURL     string         `json:"cancel_url"`
	Metadata      Metadata       `json:"metadata"`
}

type cardLineItem struct {
	ProductID      string  `json:"product_id"`
	VariantID      *string `json:"variant_id,omitempty"`
	Name           string  `json:"name,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
}

func (c *Card) CreateSession(ctx context.Context, req PaymentIntentRequest) (*Session, error) {
	items := make([]cardLineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, cardLineItem{
			ProductID:      li.ProductID,
			VariantID:      li.VariantID,
			Name:           li.Name,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
		})
	}
	payload, err := json.Marshal(cardSessionRequest{
		Reference:     req.Reference,
		Currency:      req.Currency,
		LineItems:     items,
		ShippingCents: req.ShippingCents,
		DiscountCents: req.DiscountCents,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("card gateway returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &Session{ID: result.ID, RedirectURL: result.URL}, nil
}

type cardWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Reference   string         `json:"reference"`
		Status      string         `json:"status"`
		AmountCents int64          `json:"amount_cents"`
		Currency    string         `json:"currency"`
		LineItems   []cardLineItem `json:"line_items"`
		Metadata    Metadata       `json:"metadata"`
	} `json:"data"`
}

func (c *Card) VerifyNotification(_ context.Context, n Notification) (*Payment, error) {
	if !c.signatureValid(n.Body, n.Signature) {
		return nil, fmt.Errorf("card webhook signature mismatch: %w", domain.ErrGatewayVerification)
	}

	var event cardWebhookEvent
	if err := json.Unmarshal(n.Body, &event); err != nil {
		return nil, fmt.Errorf("unmarshal webhook body: %w", domain.ErrGatewayVerification)
	}
	if event.Data.Reference == "" {
		return nil, fmt.Errorf("webhook missing payment reference: %w", domain.ErrGatewayVerification)
	}

	items := make([]LineItem, 0, len(event.Data.LineItems))
	for _, li := range event.Data.LineItems {
		items = append(items, LineItem{
			ProductID:      li.ProductID,
			VariantID:      li.VariantID,
			Name:           li.Name,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
		})
	}

	return &Payment{
		ExternalReference: event.Data.Reference,
		Status:            normalizeStatus(event.Data.Status),
		AmountCents:       event.Data.AmountCents,
		Currency:          event.Data.Currency,
		LineItems:         items,
		Metadata:          event.Data.Metadata,
	}, nil
}

func (c *Card) signatureValid(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func normalizeStatus(s string) PaymentStatus {
	switch s {
	case "approved", "paid", "succeeded":
		return StatusApproved
	case "pending", "in_process":
		return StatusPending
	default:
		return StatusRejected
	}
}
