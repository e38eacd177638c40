package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductKind string

const (
	KindRaw   ProductKind = "raw"   // plain raw material, no sub-ingredients
	KindReady ProductKind = "ready" // composite product built from raw materials
)

type Product struct {
	BaseModel
	OwnerID      uuid.UUID   `gorm:"type:uuid;index;not null" json:"owner_id" validate:"uuid_required"`
	Kind         ProductKind `gorm:"type:varchar(10);not null;default:'raw'" json:"kind" validate:"required,oneof=raw ready"`
	Name         string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Manufacturer string      `gorm:"type:varchar(255);not null" json:"manufacturer" validate:"required"`
	Stock        float64     `gorm:"not null;default:0;check:stock >= 0" json:"stock" validate:"gte=0"`
	Price        float64     `gorm:"default:0" json:"price"`
	Size         string      `gorm:"type:varchar(50)" json:"size"`
	Description  string      `json:"description"`

	// Bill of materials, only interpreted when Kind = ready
	Ingredients []Ingredient `gorm:"foreignKey:ProductID" json:"ingredients,omitempty" validate:"dive"`
}

// Ingredient is one line of a composite product's bill of materials:
// Quantity units of the referenced raw material per unit of the composite.
// MaterialID is a soft reference; nothing is enforced on material delete.
type Ingredient struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID  uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null" json:"material" validate:"uuid_required"`
	Quantity   float64   `gorm:"not null" json:"quantity" validate:"gte=0"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
