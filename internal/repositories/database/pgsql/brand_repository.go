package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	"github.com/shopkhata/shopkhata_backend/internal/models"
	"github.com/shopkhata/shopkhata_backend/internal/utils/mapping"
)

// PgxBrandRepository reads the brand catalog. The catalog is seeded by
// migrations and edited out of band, so there is no write path here.
type PgxBrandRepository struct {
	pool *pgxpool.Pool
}

// newPgxBrandRepository creates a new repository for brand catalog data.
func newPgxBrandRepository(pool *pgxpool.Pool) *PgxBrandRepository {
	return &PgxBrandRepository{pool: pool}
}

var _ portsrepo.BrandReader = (*PgxBrandRepository)(nil)

func (r *PgxBrandRepository) FindBrandByName(ctx context.Context, name string) (*domain.Brand, error) {
	query := `SELECT name, default_cost, created_at, last_updated_at FROM brands WHERE name = $1;`
	var m models.Brand
	err := r.pool.QueryRow(ctx, query, name).Scan(&m.Name, &m.DefaultCost, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("brand %s: %w", name, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find brand %s: %w", name, err)
	}
	d := mapping.ToDomainBrand(m)
	return &d, nil
}

func (r *PgxBrandRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	query := `SELECT name, default_cost, created_at, last_updated_at FROM brands ORDER BY name;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := make([]domain.Brand, 0)
	for rows.Next() {
		var m models.Brand
		if err := rows.Scan(&m.Name, &m.DefaultCost, &m.CreatedAt, &m.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand row: %w", err)
		}
		brands = append(brands, mapping.ToDomainBrand(m))
	}
	return brands, rows.Err()
}
