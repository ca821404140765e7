package webhook

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	orderrepo "storefront/internal/repository/order"
)

type stubGateway struct {
	name    string
	payment *gateway.Payment
	err     error
}

func (g *stubGateway) Name() string { return g.name }

func (g *stubGateway) CreateSession(context.Context, gateway.PaymentIntentRequest) (*gateway.Session, error) {
	return nil, errors.New("not used")
}

func (g *stubGateway) VerifyNotification(context.Context, gateway.Notification) (*gateway.Payment, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.payment, nil
}

type stubOrderRepo struct {
	byRef   map[string]*domain.Order
	creates int
	err     error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byRef: map[string]*domain.Order{}}
}

func (r *stubOrderRepo) CreateFromPayment(_ context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	if existing, ok := r.byRef[in.ExternalReference]; ok {
		return existing, domain.ErrDuplicateWebhook
	}
	r.creates++
	ord := &domain.Order{
		ID:                "order-" + in.ExternalReference,
		Status:            in.Status,
		TotalCents:        in.TotalCents,
		ExternalReference: in.ExternalReference,
	}
	r.byRef[in.ExternalReference] = ord
	return ord, nil
}

type stubAddressRepo struct {
	addr *domain.Address
	err  error
}

func (r *stubAddressRepo) GetAddress(context.Context, string) (*domain.Address, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.addr, nil
}

type recordingNotifier struct {
	confirmed []string
	err       error
}

func (n *recordingNotifier) OrderConfirmed(_ context.Context, order *domain.Order) error {
	n.confirmed = append(n.confirmed, order.ID)
	return n.err
}

func (n *recordingNotifier) OrderStatusChanged(context.Context, *domain.Order) error {
	return nil
}

func approvedPayment(ref string) *gateway.Payment {
	return &gateway.Payment{
		ExternalReference: ref,
		Status:            gateway.StatusApproved,
		AmountCents:       4499,
		Currency:          "EUR",
		LineItems: []gateway.LineItem{
			{ProductID: "prod-1", Quantity: 2, UnitPriceCents: 2000},
		},
		Metadata: gateway.Metadata{AddressID: "addr-1", ShippingCents: 499},
	}
}

func newService(gw gateway.Gateway, orders *stubOrderRepo, notifier *recordingNotifier) *Service {
	return New([]gateway.Gateway{gw}, orders, &stubAddressRepo{addr: &domain.Address{ID: "addr-1"}}, notifier, nil)
}

func TestProcessApprovedCreatesOrderAndNotifies(t *testing.T) {
	orders := newStubOrderRepo()
	notifier := &recordingNotifier{}
	svc := newService(&stubGateway{name: "card", payment: approvedPayment("ord_1")}, orders, notifier)

	out, err := svc.Process(context.Background(), "card", gateway.Notification{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Created || out.Dropped {
		t.Fatalf("expected created outcome, got %+v", out)
	}
	if out.Order.Status != domain.StatusProcessing {
		t.Errorf("status = %s, want %s", out.Order.Status, domain.StatusProcessing)
	}
	if len(notifier.confirmed) != 1 || notifier.confirmed[0] != out.Order.ID {
		t.Errorf("confirmed = %v, want [%s]", notifier.confirmed, out.Order.ID)
	}
}

func TestProcessDuplicateDeliveryReturnsExistingOrder(t *testing.T) {
	orders := newStubOrderRepo()
	notifier := &recordingNotifier{}
	svc := newService(&stubGateway{name: "card", payment: approvedPayment("ord_1")}, orders, notifier)

	first, err := svc.Process(context.Background(), "card", gateway.Notification{})
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := svc.Process(context.Background(), "card", gateway.Notification{})
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if second.Created {
		t.Error("second delivery reported Created")
	}
	if second.Order.ID != first.Order.ID {
		t.Errorf("order id = %s, want %s", second.Order.ID, first.Order.ID)
	}
	if orders.creates != 1 {
		t.Errorf("creates = %d, want 1", orders.creates)
	}
	if len(notifier.confirmed) != 1 {
		t.Errorf("confirmed %d times, want 1", len(notifier.confirmed))
	}
}

func TestProcessNonApprovedIsDropped(t *testing.T) {
	orders := newStubOrderRepo()
	p := approvedPayment("ord_1")
	p.Status = gateway.StatusPending
	svc := newService(&stubGateway{name: "card", payment: p}, orders, &recordingNotifier{})

	out, err := svc.Process(context.Background(), "card", gateway.Notification{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Dropped {
		t.Fatal("expected Dropped outcome")
	}
	if orders.creates != 0 {
		t.Errorf("creates = %d, want 0", orders.creates)
	}
}

func TestProcessVerificationFailure(t *testing.T) {
	orders := newStubOrderRepo()
	svc := newService(&stubGateway{name: "card", err: domain.ErrGatewayVerification}, orders, &recordingNotifier{})

	if _, err := svc.Process(context.Background(), "card", gateway.Notification{}); !errors.Is(err, domain.ErrGatewayVerification) {
		t.Fatalf("err = %v, want ErrGatewayVerification", err)
	}
	if orders.creates != 0 {
		t.Errorf("creates = %d, want 0", orders.creates)
	}
}

func TestProcessUnknownGateway(t *testing.T) {
	svc := newService(&stubGateway{name: "card", payment: approvedPayment("ord_1")}, newStubOrderRepo(), &recordingNotifier{})

	if _, err := svc.Process(context.Background(), "bank", gateway.Notification{}); !errors.Is(err, domain.ErrGatewayVerification) {
		t.Fatalf("err = %v, want ErrGatewayVerification", err)
	}
}

func TestProcessMalformedLineItems(t *testing.T) {
	p := approvedPayment("ord_1")
	p.LineItems = []gateway.LineItem{{ProductID: "", Quantity: 1, UnitPriceCents: 100}}
	svc := newService(&stubGateway{name: "card", payment: p}, newStubOrderRepo(), &recordingNotifier{})

	if _, err := svc.Process(context.Background(), "card", gateway.Notification{}); !errors.Is(err, domain.ErrInvalidLine) {
		t.Fatalf("err = %v, want ErrInvalidLine", err)
	}
}

func TestProcessMaterializeFailurePropagates(t *testing.T) {
	orders := newStubOrderRepo()
	orders.err = errors.New("db down")
	notifier := &recordingNotifier{}
	svc := newService(&stubGateway{name: "card", payment: approvedPayment("ord_1")}, orders, notifier)

	if _, err := svc.Process(context.Background(), "card", gateway.Notification{}); err == nil {
		t.Fatal("expected error")
	}
	if len(notifier.confirmed) != 0 {
		t.Errorf("confirmed = %v, want none", notifier.confirmed)
	}
}

func TestProcessNotifyFailureIsBestEffort(t *testing.T) {
	orders := newStubOrderRepo()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := newService(&stubGateway{name: "card", payment: approvedPayment("ord_1")}, orders, notifier)

	out, err := svc.Process(context.Background(), "card", gateway.Notification{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Created {
		t.Fatal("expected Created outcome despite notify failure")
	}
}
