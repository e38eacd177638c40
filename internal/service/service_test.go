package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a private in-memory database per test. The shared-cache DSN
// keeps every pooled connection attached to the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Product{}, &model.Ingredient{}, &model.StockMovement{},
		&model.Purchase{}, &model.Sale{}, &model.User{},
	))
	return db
}

type testEnv struct {
	db       *gorm.DB
	products repository.ProductRepository
	moves    repository.StockMovementRepository
	trades   repository.TradeRepository
	ledger   LedgerService
	svc      ProductService
	ownerID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	hub := ws.NewHub()
	go hub.Run()

	products := repository.NewProductRepo(db)
	moves := repository.NewStockMovementRepo(db)
	trades := repository.NewTradeRepo(db)

	return &testEnv{
		db:       db,
		products: products,
		moves:    moves,
		trades:   trades,
		ledger:   NewLedgerService(products, moves, db, hub),
		svc:      NewProductService(products, moves, trades, db, hub),
		ownerID:  uuid.New(),
	}
}

func (e *testEnv) createRawMaterial(t *testing.T, name string, stock float64) *model.Product {
	t.Helper()

	material := &model.Product{
		OwnerID:      e.ownerID,
		Kind:         model.KindRaw,
		Name:         name,
		Manufacturer: "Acme",
		Stock:        stock,
	}
	require.NoError(t, e.products.Create(e.db, material))
	return material
}

func (e *testEnv) materialStock(t *testing.T, id uuid.UUID) float64 {
	t.Helper()

	material, err := e.products.FindByID(id)
	require.NoError(t, err)
	return material.Stock
}

func (e *testEnv) productCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, e.db.Model(&model.Product{}).Count(&count).Error)
	return count
}
