package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const addressColumns = `id::text, customer_id::text, full_name, street, city, COALESCE(region, ''), postal_code, country, COALESCE(phone, ''), created_at`

func (r *postgresRepo) GetAddress(ctx context.Context, id string) (*domain.Address, error) {
	var a domain.Address
	err := r.pool.QueryRow(ctx, `
SELECT `+addressColumns+`
FROM addresses
WHERE id = $1
`, id).Scan(&a.ID, &a.CustomerID, &a.FullName, &a.Street, &a.City, &a.Region, &a.PostalCode, &a.Country, &a.Phone, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepo) CreateGuestAddress(ctx context.Context, in GuestAddressInput) (*domain.Address, error) {
	var a domain.Address
	err := r.pool.QueryRow(ctx, `
INSERT INTO addresses (customer_id, full_name, street, city, region, postal_code, country, phone)
VALUES (NULL, $1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''))
RETURNING `+addressColumns+`
`, in.FullName, in.Street, in.City, in.Region, in.PostalCode, in.Country, in.Phone).Scan(
		&a.ID, &a.CustomerID, &a.FullName, &a.Street, &a.City, &a.Region, &a.PostalCode, &a.Country, &a.Phone, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
