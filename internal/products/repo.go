package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
)

// Repository reads product reference data. The sales flows never mutate
// products.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to product lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all products, optionally restricted to active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID loads a product by its UUID, returning nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
