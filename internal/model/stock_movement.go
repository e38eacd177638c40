package model

import "github.com/google/uuid"

type MovementType string

const (
	MoveIn  MovementType = "IN"
	MoveOut MovementType = "OUT"
)

// StockMovement is the audit ledger for every stock mutation: deductions
// performed by composite-product creation, direct adjustments, and batch
// inventory corrections.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;index;not null" json:"product_id" validate:"uuid_required"`
	Product   Product      `json:"product,omitempty" validate:"-"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=IN OUT"`
	Quantity  float64      `gorm:"not null" json:"quantity" validate:"gt=0"`
	Note      string       `json:"note"`

	// Composite product whose creation consumed this material, if any
	RefProductID *uuid.UUID `gorm:"type:uuid" json:"ref_product_id,omitempty"`
}
