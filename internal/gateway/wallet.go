package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/domain"
)

// Wallet talks to the regional wallet gateway. Its notifications carry only
// a payment id, so verification re-fetches the payment record from the
// provider instead of checking a signature.
type Wallet struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewWallet(baseURL, token string) *Wallet {
	return &Wallet{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *Wallet) Name() string { return "wallet" }

type walletPreferenceRequest struct {
	ExternalReference string           `json:"external_reference"`
	Items             []walletItem     `json:"items"`
	ShippingCents     int64            `json:"shipping_cents"`
	DiscountCents     int64            `json:"discount_cents"`
	BackURLs          walletBackURLs   `json:"back_urls"`
	Metadata          Metadata         `json:"metadata"`
}

type walletItem struct {
	ID             string  `json:"id"`
	VariantID      *string `json:"variant_id,omitempty"`
	Title          string  `json:"title,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	CurrencyID     string  `json:"currency_id"`
}

type walletBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
}

func (w *Wallet) CreateSession(ctx context.Context, req PaymentIntentRequest) (*Session, error) {
	items := make([]walletItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, walletItem{
			ID:             li.ProductID,
			VariantID:      li.VariantID,
			Title:          li.Name,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
			CurrencyID:     req.Currency,
		})
	}
	payload, err := json.Marshal(walletPreferenceRequest{
		ExternalReference: req.Reference,
		Items:             items,
		ShippingCents:     req.ShippingCents,
		DiscountCents:     req.DiscountCents,
		BackURLs:          walletBackURLs{Success: req.SuccessURL, Failure: req.CancelURL},
		Metadata:          req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("wallet gateway returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		ID        string `json:"id"`
		InitPoint string `json:"init_point"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &Session{ID: result.ID, RedirectURL: result.InitPoint}, nil
}

type walletPayment struct {
	ID                string       `json:"id"`
	Status            string       `json:"status"`
	ExternalReference string       `json:"external_reference"`
	AmountCents       int64        `json:"transaction_amount_cents"`
	Currency          string       `json:"currency_id"`
	Items             []walletItem `json:"items"`
	Metadata          Metadata     `json:"metadata"`
}

func (w *Wallet) VerifyNotification(ctx context.Context, n Notification) (*Payment, error) {
	if n.PaymentID == "" {
		return nil, fmt.Errorf("wallet notification missing payment id: %w", domain.ErrGatewayVerification)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/payments/"+n.PaymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", n.PaymentID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("payment %s not known to provider: %w", n.PaymentID, domain.ErrGatewayVerification)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet gateway returned %d: %s", resp.StatusCode, body)
	}

	var payment walletPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	if payment.ExternalReference == "" {
		return nil, fmt.Errorf("payment %s missing external reference: %w", n.PaymentID, domain.ErrGatewayVerification)
	}

	items := make([]LineItem, 0, len(payment.Items))
	for _, it := range payment.Items {
		items = append(items, LineItem{
			ProductID:      it.ID,
			VariantID:      it.VariantID,
			Name:           it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	return &Payment{
		ExternalReference: payment.ExternalReference,
		Status:            normalizeStatus(payment.Status),
		AmountCents:       payment.AmountCents,
		Currency:          payment.Currency,
		LineItems:         items,
		Metadata:          payment.Metadata,
	}, nil
}
