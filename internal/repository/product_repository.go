package repository

import (
	"context"
	"fmt"

	"insurance-ledger/internal/models"

	"github.com/jmoiron/sqlx"
)

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Insert records a newly issued product.
func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO product (product_id, provider_id, provider_name, for_crop,
		       premium_amount_per_hectare, insured_amount_per_hectare, product_doc_hash,
		       created_date, expiry_date, weather_criteria, is_active, participants)
		VALUES (:product_id, :provider_id, :provider_name, :for_crop,
		       :premium_amount_per_hectare, :insured_amount_per_hectare, :product_doc_hash,
		       :created_date, :expiry_date, :weather_criteria, :is_active, :participants)
	`

	_, err := r.db.NamedExecContext(ctx, query, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its id.
func (r *ProductRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	query := `
		SELECT product_id, provider_id, provider_name, for_crop,
		       premium_amount_per_hectare, insured_amount_per_hectare, product_doc_hash,
		       created_date, expiry_date, weather_criteria, is_active, participants
		FROM product
		WHERE product_id = $1
	`

	if err := r.db.GetContext(ctx, &product, query, productID); err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}
	return &product, nil
}

// GetAll retrieves all products, active ones first.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	query := `
		SELECT product_id, provider_id, provider_name, for_crop,
		       premium_amount_per_hectare, insured_amount_per_hectare, product_doc_hash,
		       created_date, expiry_date, weather_criteria, is_active, participants
		FROM product
		ORDER BY is_active DESC, created_date DESC
	`

	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}
