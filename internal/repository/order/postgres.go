package order

import (
	"context"
	"errors"
	"fmt"
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

const orderColumns = `id::text, customer_id::text, status, total_cents, shipping_cents, discount_cents,
payment_method, external_reference,
ship_full_name, ship_street, ship_city, ship_region, ship_postal_code, ship_country, ship_phone,
created_at, updated_at`

const uniqueViolation = "23505"

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.ShippingCents, &o.DiscountCents,
		&o.PaymentMethod, &o.ExternalReference,
		&o.Address.FullName, &o.Address.Street, &o.Address.City, &o.Address.Region,
		&o.Address.PostalCode, &o.Address.Country, &o.Address.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) CreateFromPayment(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ord, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (customer_id, status, total_cents, shipping_cents, discount_cents,
                    payment_method, external_reference,
                    ship_full_name, ship_street, ship_city, ship_region, ship_postal_code, ship_country, ship_phone)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING `+orderColumns+`
`, in.CustomerID, in.Status, in.TotalCents, in.ShippingCents, in.DiscountCents,
		in.PaymentMethod, in.ExternalReference,
		in.Address.FullName, in.Address.Street, in.Address.City, in.Address.Region,
		in.Address.PostalCode, in.Address.Country, in.Address.Phone))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Redelivered webhook: the first delivery won the insert.
			tx.Rollback(ctx)
			existing, getErr := r.GetByExternalReference(ctx, in.ExternalReference)
			if getErr != nil {
				return nil, getErr
			}
			return existing, domain.ErrDuplicateWebhook
		}
		r.logger.Printf("order repo: insert ref=%s error=%v", in.ExternalReference, err)
		return nil, err
	}

	for _, item := range in.Items {
		var itemOut domain.OrderItem
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, variant_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, order_id::text, product_id::text, variant_id::text, quantity, unit_price_cents
`, ord.ID, item.ProductID, item.VariantID, item.Quantity, item.UnitPriceCents).Scan(
			&itemOut.ID, &itemOut.OrderID, &itemOut.ProductID, &itemOut.VariantID, &itemOut.Quantity, &itemOut.UnitPriceCents,
		); err != nil {
			r.logger.Printf("order repo: insert item product=%s error=%v", item.ProductID, err)
			return nil, err
		}
		ord.Items = append(ord.Items, itemOut)

		if err := decrementStock(ctx, tx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			r.logger.Printf("order repo: decrement stock product=%s error=%v", item.ProductID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ord, nil
}

// decrementStock only succeeds when the resulting stock stays non-negative;
// zero rows affected aborts the surrounding transaction.
func decrementStock(ctx context.Context, tx pgx.Tx, productID string, variantID *string, qty int) error {
	var cmd pgconn.CommandTag
	var err error
	if variantID != nil {
		cmd, err = tx.Exec(ctx, `
UPDATE product_variants
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`, *variantID, qty)
	} else {
		cmd, err = tx.Exec(ctx, `
UPDATE products
SET stock = stock - $2,
    updated_at = now()
WHERE id = $1 AND stock >= $2
`, productID, qty)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
	}
	return nil
}

func restoreStock(ctx context.Context, tx pgx.Tx, productID string, variantID *string, qty int) error {
	var err error
	if variantID != nil {
		_, err = tx.Exec(ctx, `
UPDATE product_variants
SET stock = stock + $2
WHERE id = $1
`, *variantID, qty)
	} else {
		_, err = tx.Exec(ctx, `
UPDATE products
SET stock = stock + $2,
    updated_at = now()
WHERE id = $1
`, productID, qty)
	}
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1
`, id)
}

func (r *postgresRepo) GetByExternalReference(ctx context.Context, ref string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE external_reference = $1
`, ref)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	ord, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if ord.Items, err = r.fetchItems(ctx, ord.ID); err != nil {
		return nil, err
	}
	return ord, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, variant_id::text, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
ORDER BY created_at DESC
`)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Transition(ctx context.Context, id string, to domain.OrderStatus, restock bool) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !domain.CanTransition(current, to) {
		return nil, fmt.Errorf("%s -> %s: %w", current, to, domain.ErrIllegalTransition)
	}

	if _, err := tx.Exec(ctx, `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
`, id, to); err != nil {
		return nil, err
	}

	if restock {
		rows, err := tx.Query(ctx, `
SELECT product_id::text, variant_id::text, quantity
FROM order_items
WHERE order_id = $1
`, id)
		if err != nil {
			return nil, err
		}
		type restoreRow struct {
			productID string
			variantID *string
			qty       int
		}
		var restores []restoreRow
		for rows.Next() {
			var row restoreRow
			if err := rows.Scan(&row.productID, &row.variantID, &row.qty); err != nil {
				rows.Close()
				return nil, err
			}
			restores = append(restores, row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		for _, row := range restores {
			if err := restoreStock(ctx, tx, row.productID, row.variantID, row.qty); err != nil {
				r.logger.Printf("order repo: restore stock product=%s error=%v", row.productID, err)
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("order repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
