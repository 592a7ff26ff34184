package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
)

// Repository handles customer persistence. It participates in the sales
// posting transaction via WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByIDWithAssociations(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByNameFold(ctx context.Context, name string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to customer operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Sales").
		Preload("Traffic").
		Order("created_at DESC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByIDWithAssociations(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Sales").
		Preload("Traffic").
		Where("id = ?", id).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByNameFold matches a customer name case-insensitively. No unique
// constraint backs this lookup; concurrent creations of the same new name
// can both miss and insert twice, which the system accepts.
func (r *repository) FindByNameFold(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes the customer row only. Sales keep their customer_id and
// ledger history is never touched.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}
