package service

import (
	"time"

	"go-inventory-bom/internal/repository"

	"github.com/google/uuid"
)

type DashboardService interface {
	GetStockMovement(ownerID uuid.UUID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ownerID uuid.UUID) (*repository.DashboardStats, error)
}

type dashboardService struct {
	movementRepo repository.StockMovementRepository
}

func NewDashboardService(movementRepo repository.StockMovementRepository) DashboardService {
	return &dashboardService{movementRepo: movementRepo}
}

func (s *dashboardService) GetStockMovement(ownerID uuid.UUID, days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(ownerID, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ownerID uuid.UUID) (*repository.DashboardStats, error) {
	return s.movementRepo.GetDashboardStats(ownerID)
}
