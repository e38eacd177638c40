package repository

import (
	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TradeRepository interface {
	DeletePurchasesByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error)
	DeleteSalesByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error)
}

type tradeRepo struct {
	db *gorm.DB
}

func NewTradeRepo(db *gorm.DB) TradeRepository {
	return &tradeRepo{db}
}

func (r *tradeRepo) DeletePurchasesByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	res := tx.Where("product_id = ?", productID).Delete(&model.Purchase{})
	return res.RowsAffected, res.Error
}

func (r *tradeRepo) DeleteSalesByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	res := tx.Where("product_id = ?", productID).Delete(&model.Sale{})
	return res.RowsAffected, res.Error
}
