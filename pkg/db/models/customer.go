package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is created explicitly via the API or implicitly during sale
// posting when only a name is supplied.
type Customer struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	Email     *string    `gorm:"column:email" json:"email,omitempty"`
	Phone     *string    `gorm:"column:phone" json:"phone,omitempty"`
	Address   *string    `gorm:"column:address" json:"address,omitempty"`
	Company   *string    `gorm:"column:company" json:"company,omitempty"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	User    *User             `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	Sales   []Sale            `gorm:"foreignKey:CustomerID" json:"sales,omitempty"`
	Traffic []CustomerTraffic `gorm:"foreignKey:CustomerID" json:"traffic,omitempty"`
}
