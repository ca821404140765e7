package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"storefront/internal/domain"
)

func signBody(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCardVerifyNotification(t *testing.T) {
	card := NewCard("https://example.invalid", "sk", "whsec")
	body := []byte(`{
		"type": "payment.updated",
		"data": {
			"reference": "pay_123",
			"status": "approved",
			"amount_cents": 4499,
			"currency": "USD",
			"line_items": [{"product_id": "p1", "quantity": 2, "unit_price_cents": 2000}],
			"metadata": {"addressId": "addr-1", "shippingCents": 499}
		}
	}`)

	payment, err := card.VerifyNotification(context.Background(), Notification{
		Body:      body,
		Signature: signBody(t, "whsec", body),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.ExternalReference != "pay_123" {
		t.Fatalf("unexpected reference %q", payment.ExternalReference)
	}
	if payment.Status != StatusApproved {
		t.Fatalf("unexpected status %q", payment.Status)
	}
	if len(payment.LineItems) != 1 || payment.LineItems[0].ProductID != "p1" {
		t.Fatalf("unexpected line items %+v", payment.LineItems)
	}
	if payment.Metadata.AddressID != "addr-1" {
		t.Fatalf("metadata not carried through: %+v", payment.Metadata)
	}
}

func TestCardVerifyNotificationBadSignature(t *testing.T) {
	card := NewCard("https://example.invalid", "sk", "whsec")
	body := []byte(`{"data":{"reference":"pay_123","status":"approved"}}`)

	_, err := card.VerifyNotification(context.Background(), Notification{
		Body:      body,
		Signature: signBody(t, "wrong-secret", body),
	})
	if !errors.Is(err, domain.ErrGatewayVerification) {
		t.Fatalf("expected ErrGatewayVerification, got %v", err)
	}
}

func TestCardVerifyNotificationMissingReference(t *testing.T) {
	card := NewCard("https://example.invalid", "sk", "whsec")
	body := []byte(`{"data":{"status":"approved"}}`)

	_, err := card.VerifyNotification(context.Background(), Notification{
		Body:      body,
		Signature: signBody(t, "whsec", body),
	})
	if !errors.Is(err, domain.ErrGatewayVerification) {
		t.Fatalf("expected ErrGatewayVerification, got %v", err)
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"approved":   StatusApproved,
		"paid":       StatusApproved,
		"succeeded":  StatusApproved,
		"pending":    StatusPending,
		"in_process": StatusPending,
		"rejected":   StatusRejected,
		"cancelled":  StatusRejected,
		"":           StatusRejected,
	}
	for in, want := range cases {
		if got := normalizeStatus(in); got != want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
