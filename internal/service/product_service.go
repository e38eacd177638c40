package service

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/internal/ws"
	"go-inventory-bom/pkg/metrics"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ProductService interface {
	GetProducts(ownerID uuid.UUID) ([]model.Product, error)
	GetRawMaterials(ownerID uuid.UUID) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	Search(ownerID uuid.UUID, term string) ([]model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID string) (*model.Product, error)
	DeleteProduct(id uuid.UUID, userID string) (*DeleteResult, error)
	DeductStock(id uuid.UUID, quantity float64, userID, userName string) (*model.Product, error)
	BatchAdjust(updates []StockAdjustment, userID string) ([]model.Product, error)
	BulkInsertRawMaterials(ownerID uuid.UUID, entries []RawMaterialEntry) *BulkResult
	ImportRawMaterialsWorkbook(ownerID uuid.UUID, data []byte) (*BulkResult, error)
}

// UpdateProductRequest carries the editable fields; nil pointers are left
// untouched. Later edits never re-run ingredient deduction.
type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	Manufacturer *string  `json:"manufacturer"`
	Description  *string  `json:"description"`
	Stock        *float64 `json:"stock"`
	Price        *float64 `json:"price"`
	Size         *string  `json:"size"`
}

type DeleteResult struct {
	DeletedProduct      *model.Product `json:"deleted_product"`
	DeletedPurchaseRefs int64          `json:"deleted_purchase_refs"`
	DeletedSaleRefs     int64          `json:"deleted_sale_refs"`
}

type StockAdjustment struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  float64   `json:"quantity"`
}

// RawMaterialEntry deliberately keeps Stock untyped: bulk upload is
// best-effort, so a non-numeric stock must fail its own entry instead of
// failing the whole request body at decode time.
type RawMaterialEntry struct {
	Name         string      `json:"name"`
	Manufacturer string      `json:"manufacturer"`
	Stock        interface{} `json:"stock"`
	Price        float64     `json:"price"`
	Size         string      `json:"size"`
	Description  string      `json:"description"`
}

type BulkEntryError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BulkResult struct {
	InsertedCount int              `json:"insertedCount"`
	Failures      []BulkEntryError `json:"failedEntries,omitempty"`
}

type productService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	tradeRepo    repository.TradeRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewProductService(pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, tRepo repository.TradeRepository, db *gorm.DB, hub *ws.Hub) ProductService {
	return &productService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		tradeRepo:    tRepo,
		db:           db,
		wsHub:        hub,
	}
}

func (s *productService) GetProducts(ownerID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindByOwner(ownerID)
}

func (s *productService) GetRawMaterials(ownerID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindByOwnerAndKind(ownerID, model.KindRaw)
}

func (s *productService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *productService) Search(ownerID uuid.UUID, term string) ([]model.Product, error) {
	return s.productRepo.SearchByName(ownerID, term)
}

func (s *productService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID string) (*model.Product, error) {
	fields := map[string]interface{}{"updated_by": userID}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Manufacturer != nil {
		fields["manufacturer"] = *req.Manufacturer
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, &ValidationError{Field: "Stock", Tag: "gte"}
		}
		fields["stock"] = *req.Stock
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Size != nil {
		fields["size"] = *req.Size
	}

	var updated *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.UpdateFields(tx, id, fields); err != nil {
			return err
		}
		var err error
		updated, err = s.productRepo.FindByIDTx(tx, id)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct removes the product together with its purchase and sale
// records. Raw material stock consumed by a deleted composite product is NOT
// restored.
func (s *productService) DeleteProduct(id uuid.UUID, userID string) (*DeleteResult, error) {
	result := &DeleteResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDTx(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		result.DeletedProduct = product

		if err := s.productRepo.Delete(tx, id, userID); err != nil {
			return err
		}
		if result.DeletedPurchaseRefs, err = s.tradeRepo.DeletePurchasesByProduct(tx, id); err != nil {
			return err
		}
		if result.DeletedSaleRefs, err = s.tradeRepo.DeleteSalesByProduct(tx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeductStock subtracts quantity with no insufficient-stock guard; the
// database check constraint is the only floor. Used by non-composite flows.
func (s *productService) DeductStock(id uuid.UUID, quantity float64, userID, userName string) (*model.Product, error) {
	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.AdjustStock(tx, id, -quantity, userID); err != nil {
			return err
		}
		movement := &model.StockMovement{
			ProductID: id,
			Type:      model.MoveOut,
			Quantity:  quantity,
			Note:      "direct deduction",
		}
		movement.CreatedBy = userID
		movement.UpdatedBy = userID
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}
		var err error
		product, err = s.productRepo.FindByIDTx(tx, id)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	go s.wsHub.BroadcastEvent(ws.StockEvent{
		Action: "stock_deducted",
		Payload: map[string]interface{}{
			"id":        product.ID,
			"name":      product.Name,
			"new_stock": product.Stock,
		},
		Message: fmt.Sprintf("%s deducted %g units of '%s'", userName, quantity, product.Name),
	})
	return product, nil
}

// BatchAdjust applies per-product stock increments (negative quantities
// subtract), one transaction per entry like the original inventory updater.
func (s *productService) BatchAdjust(updates []StockAdjustment, userID string) ([]model.Product, error) {
	results := make([]model.Product, 0, len(updates))
	for _, u := range updates {
		var product *model.Product
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.productRepo.AdjustStock(tx, u.ProductID, u.Quantity, userID); err != nil {
				return err
			}
			movementType := model.MoveIn
			qty := u.Quantity
			if qty < 0 {
				movementType = model.MoveOut
				qty = -qty
			}
			if qty > 0 {
				movement := &model.StockMovement{
					ProductID: u.ProductID,
					Type:      movementType,
					Quantity:  qty,
					Note:      "inventory correction",
				}
				movement.CreatedBy = userID
				movement.UpdatedBy = userID
				if err := s.movementRepo.Create(tx, movement); err != nil {
					return err
				}
			}
			var err error
			product, err = s.productRepo.FindByIDTx(tx, u.ProductID)
			return err
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		results = append(results, *product)
	}
	return results, nil
}

// BulkInsertRawMaterials is best-effort: invalid entries are reported by
// original index while valid entries still land. This is the opposite policy
// from composite-product creation, which is strictly all-or-nothing.
func (s *productService) BulkInsertRawMaterials(ownerID uuid.UUID, entries []RawMaterialEntry) *BulkResult {
	result := &BulkResult{}
	for i, entry := range entries {
		stock, err := coerceStock(entry.Stock)
		if err != nil {
			result.Failures = append(result.Failures, BulkEntryError{Index: i, Error: err.Error()})
			continue
		}
		if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.Manufacturer) == "" {
			result.Failures = append(result.Failures, BulkEntryError{Index: i, Error: "name and manufacturer are required"})
			continue
		}

		product := &model.Product{
			OwnerID:      ownerID,
			Kind:         model.KindRaw,
			Name:         strings.TrimSpace(entry.Name),
			Manufacturer: strings.TrimSpace(entry.Manufacturer),
			Stock:        stock,
			Price:        entry.Price,
			Size:         entry.Size,
			Description:  entry.Description,
		}
		product.CreatedBy = ownerID.String()
		product.UpdatedBy = ownerID.String()

		if err := s.productRepo.Create(s.db, product); err != nil {
			result.Failures = append(result.Failures, BulkEntryError{Index: i, Error: err.Error()})
			continue
		}
		result.InsertedCount++
		metrics.BulkInserted.Inc()
	}
	return result
}

// coerceStock accepts only JSON numbers and truncates them to an integer
// quantity, matching the bulk-upload contract.
func coerceStock(v interface{}) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("stock must be numeric, got %T", v)
	}
	if f < 0 {
		return 0, errors.New("stock cannot be negative")
	}
	return math.Trunc(f), nil
}

// ImportRawMaterialsWorkbook reads an .xlsx sheet with the columns
// name | manufacturer | stock | price | size | description (header row
// required) and feeds the rows through the same best-effort bulk insert.
func (s *productService) ImportRawMaterialsWorkbook(ownerID uuid.UUID, data []byte) (*BulkResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot read workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, errors.New("workbook has no data rows")
	}

	entries := make([]RawMaterialEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, rowToEntry(row))
	}
	return s.BulkInsertRawMaterials(ownerID, entries), nil
}

func rowToEntry(row []string) RawMaterialEntry {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	entry := RawMaterialEntry{
		Name:         cell(0),
		Manufacturer: cell(1),
		Size:         cell(4),
		Description:  cell(5),
	}
	// Keep the raw string when stock isn't numeric so the entry fails with a
	// per-index error instead of being silently zeroed
	if stock, err := strconv.ParseFloat(cell(2), 64); err == nil {
		entry.Stock = stock
	} else {
		entry.Stock = cell(2)
	}
	if price, err := strconv.ParseFloat(cell(3), 64); err == nil {
		entry.Price = price
	}
	return entry
}
