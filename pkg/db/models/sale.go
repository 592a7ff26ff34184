package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is written exactly once per posting; its amount is caller-supplied
// and every sale has exactly one matching SALES cash-flow entry.
type Sale struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null" json:"customer_id"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null" json:"amount"`
	CashierName *string         `gorm:"column:cashier_name" json:"cashier_name,omitempty"`
	SaleDate    time.Time       `gorm:"column:sale_date;not null" json:"sale_date"`
	CreatedBy   uuid.UUID       `gorm:"column:created_by;type:uuid;not null" json:"created_by"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	User     *User     `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
}
