package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerTraffic records marketing/visit touchpoints attached to a customer.
type CustomerTraffic struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid" json:"customer_id,omitempty"`
	Source     string     `gorm:"column:source;not null" json:"source"`
	Campaign   *string    `gorm:"column:campaign" json:"campaign,omitempty"`
	VisitDate  time.Time  `gorm:"column:visit_date" json:"visit_date"`
	Page       *string    `gorm:"column:page" json:"page,omitempty"`
}

// TableName keeps the singular table the schema defines.
func (CustomerTraffic) TableName() string {
	return "customer_traffic"
}
