package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
)

// Filter narrows sale listings. A customer id takes priority: when set, the
// date range is ignored.
type Filter struct {
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Repository handles sale persistence. Creation participates in the posting
// transaction via WithTx; sales are never updated or deleted afterwards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filter Filter) ([]models.Sale, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	FindByIDWithAssociations(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	Create(ctx context.Context, sale *models.Sale) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to sale operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Product").
		Preload("User").
		Order("sale_date DESC")

	switch {
	case filter.CustomerID != nil:
		query = query.Where("customer_id = ?", *filter.CustomerID)
	default:
		if filter.From != nil {
			query = query.Where("sale_date >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("sale_date <= ?", *filter.To)
		}
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindByIDWithAssociations(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Product").
		Preload("User").
		Where("id = ?", id).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}
