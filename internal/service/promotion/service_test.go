package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	promotionrepo "storefront/internal/repository/promotion"
)

type stubPromoRepo struct {
	created     *domain.Promotion
	createErr   error
	getResult   *domain.Promotion
	getErr      error
	listResult  []domain.Promotion
	finished    []domain.Promotion
	avg         float64
	deletedIDs  []string
	unlinkedIDs []string
}

func (s *stubPromoRepo) Create(_ context.Context, in promotionrepo.CreatePromotionInput) (*domain.Promotion, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return &domain.Promotion{
		ID:          "promo-1",
		Name:        in.Name,
		Kind:        in.Kind,
		Percent:     in.Percent,
		AmountCents: in.AmountCents,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		ProductIDs:  in.ProductIDs,
	}, nil
}

func (s *stubPromoRepo) GetByID(_ context.Context, _ string) (*domain.Promotion, error) {
	return s.getResult, s.getErr
}

func (s *stubPromoRepo) List(_ context.Context) ([]domain.Promotion, error) {
	return s.listResult, nil
}

func (s *stubPromoRepo) Delete(_ context.Context, id string) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func (s *stubPromoRepo) ListFinished(_ context.Context, _ time.Time) ([]domain.Promotion, error) {
	var linked []domain.Promotion
	for _, p := range s.finished {
		if !s.isUnlinked(p.ID) {
			linked = append(linked, p)
		}
	}
	return linked, nil
}

func (s *stubPromoRepo) Unlink(_ context.Context, id string) error {
	s.unlinkedIDs = append(s.unlinkedIDs, id)
	return nil
}

func (s *stubPromoRepo) isUnlinked(id string) bool {
	for _, u := range s.unlinkedIDs {
		if u == id {
			return true
		}
	}
	return false
}

func (s *stubPromoRepo) AveragePercentOff(_ context.Context, _ time.Time) (float64, error) {
	return s.avg, nil
}

// stubProducts keeps prices in memory and mimics the conditional snapshot
// updates of the postgres repository.
type stubProducts struct {
	prices    map[string]int64
	originals map[string]int64
	applyErr  map[string]error
}

func newStubProducts(prices map[string]int64) *stubProducts {
	return &stubProducts{prices: prices, originals: map[string]int64{}, applyErr: map[string]error{}}
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	price, ok := s.prices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := &domain.Product{ID: id, PriceCents: price}
	if orig, held := s.originals[id]; held {
		p.OriginalPriceCents = &orig
	}
	return p, nil
}

func (s *stubProducts) ApplyPromotionPrice(_ context.Context, id string, promoPrice int64) error {
	if err := s.applyErr[id]; err != nil {
		return err
	}
	if _, held := s.originals[id]; held {
		return domain.ErrPromotionConflict
	}
	s.originals[id] = s.prices[id]
	s.prices[id] = promoPrice
	return nil
}

func (s *stubProducts) RevertPromotionPrice(_ context.Context, id string) error {
	if orig, held := s.originals[id]; held {
		s.prices[id] = orig
		delete(s.originals, id)
	}
	return nil
}

func activeWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(24 * time.Hour)
}

func TestPriceAfter(t *testing.T) {
	cases := []struct {
		name     string
		original int64
		promo    domain.Promotion
		want     int64
	}{
		{"twenty percent", 1000, domain.Promotion{Kind: domain.PromotionPercentage, Percent: 20}, 800},
		{"rounds half up", 999, domain.Promotion{Kind: domain.PromotionPercentage, Percent: 15}, 849}, // 849.15 -> 849
		{"half cent up", 50, domain.Promotion{Kind: domain.PromotionPercentage, Percent: 25}, 38},     // 37.5 -> 38
		{"full percent", 1000, domain.Promotion{Kind: domain.PromotionPercentage, Percent: 100}, 0},
		{"fixed", 1000, domain.Promotion{Kind: domain.PromotionFixedAmount, AmountCents: 300}, 700},
		{"fixed floors at zero", 200, domain.Promotion{Kind: domain.PromotionFixedAmount, AmountCents: 500}, 0},
	}
	for _, tc := range cases {
		if got := PriceAfter(tc.original, tc.promo); got != tc.want {
			t.Errorf("%s: PriceAfter(%d) = %d, want %d", tc.name, tc.original, got, tc.want)
		}
	}
}

func TestCreateAppliesPrices(t *testing.T) {
	products := newStubProducts(map[string]int64{"p1": 1000})
	svc := New(&stubPromoRepo{}, products, nil)
	starts, ends := activeWindow()

	view, err := svc.Create(context.Background(), CreateInput{
		Name:       "spring",
		Kind:       domain.PromotionPercentage,
		Percent:    20,
		StartsAt:   starts,
		EndsAt:     ends,
		ProductIDs: []string{"p1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.State != domain.PromotionActive {
		t.Fatalf("expected active state, got %s", view.State)
	}
	if products.prices["p1"] != 800 {
		t.Fatalf("expected promoted price 800, got %d", products.prices["p1"])
	}
	if products.originals["p1"] != 1000 {
		t.Fatalf("expected original snapshot 1000, got %d", products.originals["p1"])
	}
}

func TestCreateRejectsConflict(t *testing.T) {
	products := newStubProducts(map[string]int64{"p1": 800})
	products.originals["p1"] = 1000 // already promoted
	svc := New(&stubPromoRepo{}, products, nil)
	starts, ends := activeWindow()

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "second",
		Kind:       domain.PromotionPercentage,
		Percent:    10,
		StartsAt:   starts,
		EndsAt:     ends,
		ProductIDs: []string{"p1"},
	})
	if !errors.Is(err, domain.ErrPromotionConflict) {
		t.Fatalf("expected ErrPromotionConflict, got %v", err)
	}
	if products.prices["p1"] != 800 {
		t.Fatalf("price changed despite rejection: %d", products.prices["p1"])
	}
}

func TestCreateUndoesPartialApply(t *testing.T) {
	products := newStubProducts(map[string]int64{"p1": 1000, "p2": 2000})
	products.applyErr["p2"] = errors.New("db down")
	repo := &stubPromoRepo{}
	svc := New(repo, products, nil)
	starts, ends := activeWindow()

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "multi",
		Kind:       domain.PromotionPercentage,
		Percent:    50,
		StartsAt:   starts,
		EndsAt:     ends,
		ProductIDs: []string{"p1", "p2"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if products.prices["p1"] != 1000 {
		t.Fatalf("expected p1 restored to 1000, got %d", products.prices["p1"])
	}
	if len(repo.deletedIDs) != 1 {
		t.Fatalf("expected promotion removed after failed apply, deletes=%v", repo.deletedIDs)
	}
}

func TestApplyRevertRoundTrip(t *testing.T) {
	products := newStubProducts(map[string]int64{"p1": 1000})
	starts, ends := activeWindow()
	promo := &domain.Promotion{
		ID: "promo-1", Kind: domain.PromotionPercentage, Percent: 20,
		StartsAt: starts, EndsAt: ends, ProductIDs: []string{"p1"},
	}
	repo := &stubPromoRepo{created: promo, getResult: promo}
	svc := New(repo, products, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateInput{
			Name: "cycle", Kind: domain.PromotionPercentage, Percent: 20,
			StartsAt: starts, EndsAt: ends, ProductIDs: []string{"p1"},
		})
		if err != nil {
			t.Fatalf("cycle %d create: %v", i, err)
		}
		if products.prices["p1"] != 800 {
			t.Fatalf("cycle %d: promoted price %d", i, products.prices["p1"])
		}
		if err := svc.Delete(context.Background(), "promo-1"); err != nil {
			t.Fatalf("cycle %d delete: %v", i, err)
		}
		if products.prices["p1"] != 1000 {
			t.Fatalf("cycle %d: price drifted to %d after revert", i, products.prices["p1"])
		}
		if _, held := products.originals["p1"]; held {
			t.Fatalf("cycle %d: original price not cleared", i)
		}
	}
}

func TestSweepExpired(t *testing.T) {
	products := newStubProducts(map[string]int64{"p1": 800})
	products.originals["p1"] = 1000
	repo := &stubPromoRepo{finished: []domain.Promotion{
		{ID: "old", ProductIDs: []string{"p1"}},
	}}
	svc := New(repo, products, nil)

	swept, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept, got %d", swept)
	}
	if products.prices["p1"] != 1000 {
		t.Fatalf("expected price restored, got %d", products.prices["p1"])
	}
	if len(repo.unlinkedIDs) != 1 || repo.unlinkedIDs[0] != "old" {
		t.Fatalf("expected swept promotion unlinked, got %v", repo.unlinkedIDs)
	}

	// Second sweep is a no-op.
	swept, err = svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if swept != 0 {
		t.Fatalf("second sweep reported %d promotions", swept)
	}
	if products.prices["p1"] != 1000 {
		t.Fatalf("second sweep changed price to %d", products.prices["p1"])
	}
}

func TestSweepLeavesLaterPromotionAlone(t *testing.T) {
	products := newStubProducts(map[string]int64{"p1": 800})
	products.originals["p1"] = 1000
	repo := &stubPromoRepo{finished: []domain.Promotion{
		{ID: "old", ProductIDs: []string{"p1"}},
	}}
	svc := New(repo, products, nil)
	starts, ends := activeWindow()

	if _, err := svc.SweepExpired(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if products.prices["p1"] != 1000 {
		t.Fatalf("expected old price restored, got %d", products.prices["p1"])
	}

	// A new promotion takes over the product after the old one was swept.
	if _, err := svc.Create(context.Background(), CreateInput{
		Name: "autumn", Kind: domain.PromotionPercentage, Percent: 20,
		StartsAt: starts, EndsAt: ends, ProductIDs: []string{"p1"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if products.prices["p1"] != 800 {
		t.Fatalf("expected promoted price 800, got %d", products.prices["p1"])
	}

	// Sweeping again must not touch the new promotion's price hold.
	swept, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("re-sweep: %v", err)
	}
	if swept != 0 {
		t.Fatalf("re-sweep reported %d promotions", swept)
	}
	if products.prices["p1"] != 800 {
		t.Fatalf("re-sweep reverted the active promotion: price=%d", products.prices["p1"])
	}
	if products.originals["p1"] != 1000 {
		t.Fatalf("re-sweep cleared the active promotion's snapshot: %v", products.originals)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(&stubPromoRepo{}, newStubProducts(nil), nil)
	starts, ends := activeWindow()

	if _, err := svc.Create(context.Background(), CreateInput{Name: " ", Kind: domain.PromotionPercentage, StartsAt: starts, EndsAt: ends}); err == nil {
		t.Fatalf("expected name validation error")
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "x", Kind: domain.PromotionPercentage, Percent: 101, StartsAt: starts, EndsAt: ends}); err == nil {
		t.Fatalf("expected percent range error")
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "x", Kind: domain.PromotionFixedAmount, AmountCents: 0, StartsAt: starts, EndsAt: ends}); err == nil {
		t.Fatalf("expected amount validation error")
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "x", Kind: "bogus", StartsAt: starts, EndsAt: ends}); err == nil {
		t.Fatalf("expected kind validation error")
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "x", Kind: domain.PromotionPercentage, Percent: 10, StartsAt: ends, EndsAt: starts}); err == nil {
		t.Fatalf("expected window validation error")
	}
}

func TestStats(t *testing.T) {
	svc := New(&stubPromoRepo{avg: 17.5}, newStubProducts(nil), nil)
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.AveragePercentOff != 17.5 {
		t.Fatalf("unexpected average %v", stats.AveragePercentOff)
	}
}
