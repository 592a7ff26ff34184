package cashflow

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
)

// Repository manages persistence for the append-only cash-flow ledger.
// There is intentionally no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.CashFlowEntry) error
	List(ctx context.Context) ([]models.CashFlowEntry, error)
	Latest(ctx context.Context) (*models.CashFlowEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.CashFlowEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context) ([]models.CashFlowEntry, error) {
	var entries []models.CashFlowEntry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Latest returns the entry with the maximum flow_date, or nil on an empty
// ledger. Entries sharing the same flow_date tie arbitrarily; the source
// system never defined a tiebreak and callers must not rely on one.
func (r *repository) Latest(ctx context.Context) (*models.CashFlowEntry, error) {
	var entry models.CashFlowEntry
	err := r.db.WithContext(ctx).
		Order("flow_date DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
