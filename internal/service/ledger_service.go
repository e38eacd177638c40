package service

import (
	"errors"
	"fmt"

	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/internal/ws"
	"go-inventory-bom/pkg/metrics"
	"go-inventory-bom/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService owns the invariant that a composite product may only be
// created if every raw material in its bill of materials has enough stock.
// The whole creation (product insert + all deductions) is one database
// transaction: it commits fully or leaves no trace.
type LedgerService interface {
	CreateProduct(req *CreateProductRequest, userName string) (*model.Product, error)
}

type CreateProductRequest struct {
	OwnerID      uuid.UUID           `json:"owner_id" validate:"uuid_required"`
	Kind         model.ProductKind   `json:"kind" validate:"required,oneof=raw ready"`
	Name         string              `json:"name" validate:"required"`
	Manufacturer string              `json:"manufacturer" validate:"required"`
	Stock        float64             `json:"stock" validate:"gte=0"`
	Price        float64             `json:"price"`
	Size         string              `json:"size"`
	Description  string              `json:"description"`
	Ingredients  []IngredientRequest `json:"ingredients" validate:"dive"`
}

type IngredientRequest struct {
	Material uuid.UUID `json:"material" validate:"uuid_required"`
	Quantity float64   `json:"quantity" validate:"gte=0"`
}

type ledgerService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewLedgerService(pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, db *gorm.DB, hub *ws.Hub) LedgerService {
	return &ledgerService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		db:           db,
		wsHub:        hub,
	}
}

// requirement is the total amount of one raw material consumed by a creation
// call, after duplicate bill-of-materials lines are summed.
type requirement struct {
	MaterialID uuid.UUID
	Required   float64
}

// aggregateRequirements scales each ingredient by the number of units being
// stocked and merges duplicate material references, preserving first-seen
// order so failure messages always name the first offending ingredient.
// Merging first means a material referenced twice is checked against its
// combined requirement instead of being deducted twice behind its own back.
func aggregateRequirements(ingredients []IngredientRequest, units float64) []requirement {
	index := make(map[uuid.UUID]int, len(ingredients))
	reqs := make([]requirement, 0, len(ingredients))
	for _, ing := range ingredients {
		required := ing.Quantity * units
		if i, ok := index[ing.Material]; ok {
			reqs[i].Required += required
			continue
		}
		index[ing.Material] = len(reqs)
		reqs = append(reqs, requirement{MaterialID: ing.Material, Required: required})
	}
	return reqs
}

func (s *ledgerService) CreateProduct(req *CreateProductRequest, userName string) (*model.Product, error) {
	// 1. Validate request before touching the database
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		metrics.CreationFailures.WithLabelValues("validation").Inc()
		return nil, &ValidationError{Field: first.FailedField, Tag: first.Tag}
	}

	product := req.toModel()
	requirements := aggregateRequirements(req.Ingredients, req.Stock)

	// 2. Everything below runs in one transaction: the product insert, every
	// availability check and every deduction commit together or not at all.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}

		if product.Kind != model.KindReady {
			return nil
		}

		// 3. Resolve and validate every material before mutating any of them
		materials := make(map[uuid.UUID]*model.Product, len(requirements))
		for _, r := range requirements {
			material, err := s.productRepo.FindByIDTx(tx, r.MaterialID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &MaterialNotFoundError{MaterialID: r.MaterialID}
			}
			if err != nil {
				return err
			}
			if material.Kind != model.KindRaw || material.OwnerID != product.OwnerID {
				return &MaterialNotFoundError{MaterialID: r.MaterialID}
			}
			if material.Stock < r.Required {
				return &InsufficientStockError{
					MaterialID:   r.MaterialID,
					MaterialName: material.Name,
					Required:     r.Required,
					Available:    material.Stock,
				}
			}
			materials[r.MaterialID] = material
		}

		// 4. Deduct. The conditional update re-checks availability at write
		// time, so a concurrent creation that consumed the same material
		// inside its own committed transaction cannot be overdrawn here.
		for _, r := range requirements {
			affected, err := s.productRepo.DeductStock(tx, r.MaterialID, r.Required, product.OwnerID.String())
			if err != nil {
				return err
			}
			if affected == 0 {
				material := materials[r.MaterialID]
				return &InsufficientStockError{
					MaterialID:   r.MaterialID,
					MaterialName: material.Name,
					Required:     r.Required,
					Available:    material.Stock,
				}
			}

			movement := &model.StockMovement{
				ProductID:    r.MaterialID,
				Type:         model.MoveOut,
				Quantity:     r.Required,
				Note:         fmt.Sprintf("consumed by '%s'", product.Name),
				RefProductID: &product.ID,
			}
			movement.CreatedBy = product.OwnerID.String()
			movement.UpdatedBy = product.OwnerID.String()
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, s.classify(err)
	}

	metrics.ProductsCreated.WithLabelValues(string(product.Kind)).Inc()
	if product.Kind == model.KindReady {
		metrics.StockDeductions.Add(float64(len(requirements)))
	}

	// 5. Broadcast after commit only; an aborted transaction must stay invisible
	go s.wsHub.BroadcastEvent(ws.StockEvent{
		Action: "product_created",
		Payload: map[string]interface{}{
			"id":    product.ID,
			"kind":  product.Kind,
			"name":  product.Name,
			"stock": product.Stock,
		},
		Message: fmt.Sprintf("%s created product '%s'", userName, product.Name),
	})

	return product, nil
}

// classify maps transaction failures onto the error taxonomy: domain errors
// pass through untouched, anything else becomes a TransactionAborted wrap.
func (s *ledgerService) classify(err error) error {
	var notFound *MaterialNotFoundError
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &notFound):
		metrics.CreationFailures.WithLabelValues("material_not_found").Inc()
		return err
	case errors.As(err, &insufficient):
		metrics.CreationFailures.WithLabelValues("insufficient_stock").Inc()
		return err
	default:
		metrics.CreationFailures.WithLabelValues("aborted").Inc()
		return fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	}
}

func (r *CreateProductRequest) toModel() *model.Product {
	product := &model.Product{
		OwnerID:      r.OwnerID,
		Kind:         r.Kind,
		Name:         r.Name,
		Manufacturer: r.Manufacturer,
		Stock:        r.Stock,
		Price:        r.Price,
		Size:         r.Size,
		Description:  r.Description,
	}
	product.CreatedBy = r.OwnerID.String()
	product.UpdatedBy = r.OwnerID.String()
	for _, ing := range r.Ingredients {
		product.Ingredients = append(product.Ingredients, model.Ingredient{
			MaterialID: ing.Material,
			Quantity:   ing.Quantity,
		})
	}
	return product
}
