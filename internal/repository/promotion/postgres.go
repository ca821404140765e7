package promotion

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
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

const promoColumns = `id::text, name, kind, COALESCE(percent, 0), COALESCE(amount_cents, 0), starts_at, ends_at, created_at`

func scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	var p domain.Promotion
	err := row.Scan(&p.ID, &p.Name, &p.Kind, &p.Percent, &p.AmountCents, &p.StartsAt, &p.EndsAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, in CreatePromotionInput) (*domain.Promotion, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	promo, err := scanPromotion(tx.QueryRow(ctx, `
INSERT INTO promotions (name, kind, percent, amount_cents, starts_at, ends_at)
VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, 0), $5, $6)
RETURNING `+promoColumns+`
`, in.Name, in.Kind, in.Percent, in.AmountCents, in.StartsAt, in.EndsAt))
	if err != nil {
		r.logger.Printf("promotion repo: create error=%v", err)
		return nil, err
	}

	for _, productID := range in.ProductIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_promotions (promotion_id, product_id)
VALUES ($1, $2)
`, promo.ID, productID); err != nil {
			r.logger.Printf("promotion repo: link product %s error=%v", productID, err)
			return nil, err
		}
	}
	promo.ProductIDs = in.ProductIDs

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return promo, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Promotion, error) {
	promo, err := scanPromotion(r.pool.QueryRow(ctx, `
SELECT `+promoColumns+`
FROM promotions
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if promo.ProductIDs, err = r.productIDs(ctx, promo.ID); err != nil {
		return nil, err
	}
	return promo, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Promotion, error) {
	return r.list(ctx, `
SELECT `+promoColumns+`
FROM promotions
ORDER BY starts_at DESC
`)
}

func (r *postgresRepo) ListFinished(ctx context.Context, now time.Time) ([]domain.Promotion, error) {
	return r.list(ctx, `
SELECT `+promoColumns+`
FROM promotions p
WHERE p.ends_at < $1
  AND EXISTS (
    SELECT 1 FROM product_promotions pp WHERE pp.promotion_id = p.id
  )
ORDER BY p.ends_at ASC
`, now)
}

func (r *postgresRepo) Unlink(ctx context.Context, promotionID string) error {
	if _, err := r.pool.Exec(ctx, `
DELETE FROM product_promotions
WHERE promotion_id = $1
`, promotionID); err != nil {
		r.logger.Printf("promotion repo: unlink id=%s error=%v", promotionID, err)
		return err
	}
	return nil
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Promotion, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Printf("promotion repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if result[i].ProductIDs, err = r.productIDs(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) productIDs(ctx context.Context, promotionID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT product_id::text
FROM product_promotions
WHERE promotion_id = $1
`, promotionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("promotion repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AveragePercentOff(ctx context.Context, now time.Time) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(AVG(percent), 0)
FROM promotions
WHERE kind = 'percentage' AND starts_at <= $1 AND ends_at >= $1
`, now).Scan(&avg)
	if err != nil {
		r.logger.Printf("promotion repo: average percent error=%v", err)
		return 0, err
	}
	return avg, nil
}

func (r *postgresRepo) GetDiscountCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	var dc domain.DiscountCode
	err := r.pool.QueryRow(ctx, `
SELECT code, kind, COALESCE(percent, 0), COALESCE(amount_cents, 0), active
FROM discount_codes
WHERE code = $1
`, code).Scan(&dc.Code, &dc.Kind, &dc.Percent, &dc.AmountCents, &dc.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &dc, nil
}
