package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, sku, name, COALESCE(description, ''), price_cents, original_price_cents, currency, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.OriginalPriceCents, &p.Currency, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+productColumns+`
FROM products
ORDER BY created_at DESC
`)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
SELECT `+productColumns+`
FROM products
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, sku, name, price_cents, stock, created_at
FROM product_variants
WHERE product_id = $1
ORDER BY created_at ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.PriceCents, &v.Stock, &v.CreatedAt); err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetVariant(ctx context.Context, id string) (*domain.Variant, error) {
	var v domain.Variant
	err := r.pool.QueryRow(ctx, `
SELECT id::text, product_id::text, sku, name, price_cents, stock, created_at
FROM product_variants
WHERE id = $1
`, id).Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.PriceCents, &v.Stock, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
INSERT INTO products (sku, name, description, price_cents, currency, stock)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
RETURNING `+productColumns+`
`, in.SKU, in.Name, in.Description, in.PriceCents, in.Currency, in.Stock))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrPersistenceConflict
		}
		r.logger.Printf("product repo: create sku=%s error=%v", in.SKU, err)
		return nil, err
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
UPDATE products
SET name = COALESCE($2, name),
    description = COALESCE($3, description),
    price_cents = COALESCE($4, price_cents),
    stock = COALESCE($5, stock),
    updated_at = now()
WHERE id = $1
RETURNING `+productColumns+`
`, id, in.Name, in.Description, in.PriceCents, in.Stock))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) AddVariant(ctx context.Context, productID string, in VariantInput) (*domain.Variant, error) {
	var v domain.Variant
	err := r.pool.QueryRow(ctx, `
INSERT INTO product_variants (product_id, sku, name, price_cents, stock)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, product_id::text, sku, name, price_cents, stock, created_at
`, productID, in.SKU, in.Name, in.PriceCents, in.Stock).Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.PriceCents, &v.Stock, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrPersistenceConflict
		}
		r.logger.Printf("product repo: add variant product_id=%s error=%v", productID, err)
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) ApplyPromotionPrice(ctx context.Context, productID string, promoPriceCents int64) error {
	// Single conditional statement: the snapshot and the discounted price
	// land together or not at all.
	cmd, err := r.pool.Exec(ctx, `
UPDATE products
SET original_price_cents = price_cents,
    price_cents = $2,
    updated_at = now()
WHERE id = $1 AND original_price_cents IS NULL
`, productID, promoPriceCents)
	if err != nil {
		r.logger.Printf("product repo: apply promo price id=%s error=%v", productID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrPromotionConflict
	}
	return nil
}

func (r *postgresRepo) RevertPromotionPrice(ctx context.Context, productID string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE products
SET price_cents = original_price_cents,
    original_price_cents = NULL,
    updated_at = now()
WHERE id = $1 AND original_price_cents IS NOT NULL
`, productID)
	if err != nil {
		r.logger.Printf("product repo: revert promo price id=%s error=%v", productID, err)
	}
	return err
}
