// Package seed inserts fixture data for manual testing. Apply is
// idempotent via ON CONFLICT, so rerunning it never duplicates rows.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int
	Variants    []variantSeed
}

type variantSeed struct {
	SKU        string
	Name       string
	PriceCents int64
	Stock      int
}

type discountCodeSeed struct {
	Code        string
	Kind        string
	Percent     int
	AmountCents int64
}

func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
			Stock:       50,
			Variants: []variantSeed{
				{SKU: "SKU-DEMO-TSHIRT-M", Name: "Medium", PriceCents: 1999, Stock: 30},
				{SKU: "SKU-DEMO-TSHIRT-XL", Name: "Extra Large", PriceCents: 2199, Stock: 20},
			},
		},
		{
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
			Stock:       80,
		},
		{
			SKU:         "SKU-DEMO-POSTER",
			Name:        "Demo Poster",
			Description: "A2 matte print",
			PriceCents:  2500,
			Currency:    "USD",
			Stock:       25,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	codes := []discountCodeSeed{
		{Code: "WELCOME10", Kind: "percentage", Percent: 10},
		{Code: "SHIP5", Kind: "fixed_amount", AmountCents: 500},
	}
	for _, dc := range codes {
		if err := upsertDiscountCode(ctx, pool, dc); err != nil {
			return fmt.Errorf("upsert discount code %s: %w", dc.Code, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price_cents, currency, stock)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sku) DO UPDATE SET
    name        = EXCLUDED.name,
    description = EXCLUDED.description,
    currency    = EXCLUDED.currency,
    updated_at  = now()
RETURNING id::text
`
	var productID string
	if err := pool.QueryRow(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency, p.Stock).Scan(&productID); err != nil {
		return err
	}

	for _, v := range p.Variants {
		const vq = `
INSERT INTO product_variants (product_id, sku, name, price_cents, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE SET
    name        = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents
`
		if _, err := pool.Exec(ctx, vq, productID, v.SKU, v.Name, v.PriceCents, v.Stock); err != nil {
			return fmt.Errorf("variant %s: %w", v.SKU, err)
		}
	}
	return nil
}

func upsertDiscountCode(ctx context.Context, pool *pgxpool.Pool, dc discountCodeSeed) error {
	const q = `
INSERT INTO discount_codes (code, kind, percent, amount_cents, active)
VALUES ($1, $2, $3, $4, true)
ON CONFLICT (code) DO UPDATE SET
    kind         = EXCLUDED.kind,
    percent      = EXCLUDED.percent,
    amount_cents = EXCLUDED.amount_cents,
    active       = true
`
	_, err := pool.Exec(ctx, q, dc.Code, dc.Kind, dc.Percent, dc.AmountCents)
	return err
}
