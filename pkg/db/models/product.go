package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is read-only reference data for the sales flows.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	SKU       string          `gorm:"column:sku;not null" json:"sku"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null" json:"price"`
	Stock     int             `gorm:"column:stock;not null;default:0" json:"stock"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time      `gorm:"column:updated_at" json:"updated_at,omitempty"`
}
