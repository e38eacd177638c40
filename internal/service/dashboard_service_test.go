package service

import (
	"testing"

	"go-inventory-bom/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	dash := NewDashboardService(env.moves)

	env.createRawMaterial(t, "Flour", 100)
	env.createRawMaterial(t, "Yeast", 3) // low stock

	flour, err := env.svc.GetRawMaterials(env.ownerID)
	require.NoError(t, err)
	require.NotEmpty(t, flour)

	_, err = env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Bread",
		Manufacturer: "Bakery",
		Stock:        2,
	}, "tester")
	require.NoError(t, err)

	stats, err := dash.GetDashboardStats(env.ownerID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.RawMaterials)
	assert.Equal(t, int64(1), stats.ReadyProducts)
	assert.Equal(t, int64(2), stats.LowStockCount) // yeast and the bread
}

func TestDashboardStockMovement(t *testing.T) {
	env := newTestEnv(t)
	dash := NewDashboardService(env.moves)

	material := env.createRawMaterial(t, "Flour", 100)

	_, err := env.svc.DeductStock(material.ID, 30, env.ownerID.String(), "tester")
	require.NoError(t, err)
	_, err = env.svc.BatchAdjust([]StockAdjustment{{ProductID: material.ID, Quantity: 10}}, env.ownerID.String())
	require.NoError(t, err)

	movement, err := dash.GetStockMovement(env.ownerID, 7)
	require.NoError(t, err)

	require.Len(t, movement, 1) // both movements happened today
	assert.Equal(t, 10.0, movement[0].Inbound)
	assert.Equal(t, 30.0, movement[0].Outbound)
}
