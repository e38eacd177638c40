package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_products_created_total",
		Help: "Products created, by kind (raw/ready).",
	}, []string{"kind"})

	CreationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_product_creation_failures_total",
		Help: "Aborted product creations, by reason.",
	}, []string{"reason"})

	StockDeductions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_stock_deductions_total",
		Help: "Raw material deductions committed by composite-product creation.",
	})

	BulkInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_bulk_materials_inserted_total",
		Help: "Raw materials inserted through the bulk endpoints.",
	})
)
