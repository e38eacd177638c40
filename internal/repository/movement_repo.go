package repository

import (
	"time"

	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	FindByOwner(ownerID uuid.UUID) ([]model.StockMovement, error)
	GetStockMovement(ownerID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ownerID uuid.UUID) (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string  `json:"date"`
	Inbound  float64 `json:"inbound"`
	Outbound float64 `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64   `json:"total_products"`
	RawMaterials   int64   `json:"raw_materials"`
	ReadyProducts  int64   `json:"ready_products"`
	LowStockCount  int64   `json:"low_stock_count"`
	TotalValuation float64 `json:"total_valuation"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Create(movement).Error
}

func (r *movementRepo) FindByOwner(ownerID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Preload("Product").
		Joins("JOIN products ON products.id = stock_movements.product_id").
		Where("products.owner_id = ?", ownerID).
		Order("stock_movements.created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) GetStockMovement(ownerID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per day
	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(stock_movements.created_at) as date,
			COALESCE(SUM(CASE WHEN stock_movements.type = 'IN' THEN stock_movements.quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN stock_movements.type = 'OUT' THEN stock_movements.quantity ELSE 0 END), 0) as outbound
		`).
		Joins("JOIN products ON products.id = stock_movements.product_id").
		Where("products.owner_id = ? AND stock_movements.created_at BETWEEN ? AND ?", ownerID, startDate, endDate).
		Group("DATE(stock_movements.created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *movementRepo) GetDashboardStats(ownerID uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).
		Where("owner_id = ?", ownerID).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	r.db.Model(&model.Product{}).
		Where("owner_id = ? AND kind = ?", ownerID, model.KindRaw).
		Count(&stats.RawMaterials)

	r.db.Model(&model.Product{}).
		Where("owner_id = ? AND kind = ?", ownerID, model.KindReady).
		Count(&stats.ReadyProducts)

	// Low Stock Count (stock < 10)
	r.db.Model(&model.Product{}).
		Where("owner_id = ? AND stock < ?", ownerID, 10).
		Count(&stats.LowStockCount)

	// Total Valuation (SUM of stock * price)
	r.db.Model(&model.Product{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(stock * price), 0)").
		Scan(&stats.TotalValuation)

	return &stats, nil
}
