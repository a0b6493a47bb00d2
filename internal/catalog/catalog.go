package catalog

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Catalog looks products up for the add-to-cart command.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, productID, variantID string) (domain.Product, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// RunMigrations applies the embedded schema and seed data.
func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, image, sku, metadata
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

// Product returns the product, resolved to the variant when variantID is set.
// A variant with its own price or SKU overrides the product's.
func (r *Repository) Product(ctx context.Context, productID, variantID string) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, image, sku, metadata
		FROM products
		WHERE id = ?
	`, productID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return domain.Product{}, err
	}

	if variantID == "" {
		return p, nil
	}

	var (
		v       domain.ProductVariant
		price   decimal.NullDecimal
		sku     string
		options string
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT id, name, price, sku, options
		FROM product_variants
		WHERE id = ? AND product_id = ?
	`, variantID, productID).Scan(&v.ID, &v.Name, &price, &sku, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s variant %s", ErrProductNotFound, productID, variantID)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to query variant: %w", err)
	}
	if err := json.Unmarshal([]byte(options), &v.Options); err != nil {
		return domain.Product{}, fmt.Errorf("malformed options for variant %s: %w", variantID, err)
	}

	p.Variant = &v
	if price.Valid {
		p.Price = price.Decimal
	}
	if sku != "" {
		p.SKU = sku
	}
	return p, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var (
		p        domain.Product
		metadata string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.SKU, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
			return p, fmt.Errorf("malformed metadata for product %s: %w", p.ID, err)
		}
	}
	return p, nil
}
