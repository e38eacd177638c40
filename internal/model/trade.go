package model

import (
	"time"

	"github.com/google/uuid"
)

// Purchase and Sale carry a soft ProductID reference only. Deleting a product
// cascades to its purchase and sale records but never restores ingredient
// stock that the product consumed when it was created.

type Purchase struct {
	BaseModel
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	TotalAmount float64   `gorm:"default:0" json:"total_amount"`
	BoughtAt    time.Time `json:"bought_at"`
}

type Sale struct {
	BaseModel
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	TotalAmount float64   `gorm:"default:0" json:"total_amount"`
	SoldAt      time.Time `json:"sold_at"`
}
