package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdeskhq/salesdesk-backend/pkg/enums"
)

// CashFlowEntry is an append-only ledger row. Entries are never updated or
// deleted; the balance is always recomputed from the full history. The
// amount is stored non-negative, the flow type carries the sign. ReferenceID
// points at the originating record (the sale for SALES entries) without a
// foreign key: the store enforces no referential integrity here so deleting
// a sale can never cascade into the ledger.
type CashFlowEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FlowType    enums.FlowType  `gorm:"column:flow_type;type:varchar(20);not null" json:"flow_type"`
	ReferenceID *uuid.UUID      `gorm:"column:reference_id;type:uuid" json:"reference_id,omitempty"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null" json:"amount"`
	FlowDate    time.Time       `gorm:"column:flow_date;not null" json:"flow_date"`
	Info        *string         `gorm:"column:info" json:"info,omitempty"`
}

// TableName keeps the legacy table the schema defines.
func (CashFlowEntry) TableName() string {
	return "cashflow"
}
