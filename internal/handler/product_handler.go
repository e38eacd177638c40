package handler

import (
	"errors"
	"io"

	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProductHandler struct {
	ledger   service.LedgerService
	products service.ProductService
}

func NewProductHandler(ledger service.LedgerService, products service.ProductService) *ProductHandler {
	return &ProductHandler{ledger: ledger, products: products}
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getOwnerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals("user_id")
	if raw == nil {
		return uuid.Nil, errors.New("missing user context")
	}
	return uuid.Parse(raw.(string))
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

// CreateProduct runs the atomic bill-of-materials creation. Failure responses
// echo the raw stock and ingredient input so the caller can see exactly what
// the server computed against.
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}

	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid user context"})
	}
	req.OwnerID = ownerID

	product, err := h.ledger.CreateProduct(&req, getUserName(c))
	if err != nil {
		status := 400
		if errors.Is(err, service.ErrTransactionAborted) {
			status = 500
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"debug": fiber.Map{
				"receivedStock":     req.Stock,
				"ingredientDetails": req.Ingredients,
			},
		})
	}

	return c.Status(201).JSON(product)
}

// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}
	products, err := h.products.GetProducts(ownerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// GET /api/v1/products/raw-materials
func (h *ProductHandler) GetRawMaterials(c *fiber.Ctx) error {
	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}
	materials, err := h.products.GetRawMaterials(ownerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(materials)
}

// GET /api/v1/products/search?term=
func (h *ProductHandler) SearchProducts(c *fiber.Ctx) error {
	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}
	products, err := h.products.Search(ownerID, c.Query("term"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.products.GetProduct(id)
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(product)
}

// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}

	updated, err := h.products.UpdateProduct(id, &req, ownerID.String())
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}

	result, err := h.products.DeleteProduct(id, ownerID.String())
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

type deductStockRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  float64   `json:"quantity"`
}

// POST /api/v1/products/deduct-stock
func (h *ProductHandler) DeductStock(c *fiber.Ctx) error {
	var req deductStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}

	product, err := h.products.DeductStock(req.ProductID, req.Quantity, ownerID.String(), getUserName(c))
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"message": "Product not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(product)
}

type batchAdjustRequest struct {
	Updates []service.StockAdjustment `json:"updates"`
}

// POST /api/v1/products/update-inventory
func (h *ProductHandler) BatchAdjust(c *fiber.Ctx) error {
	var req batchAdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user context"})
	}

	results, err := h.products.BatchAdjust(req.Updates, ownerID.String())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(results)
}

type bulkInsertRequest struct {
	Materials []service.RawMaterialEntry `json:"materials"`
}

// POST /api/v1/products/bulk
func (h *ProductHandler) BulkInsertRawMaterials(c *fiber.Ctx) error {
	var req bulkInsertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}

	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid user context"})
	}

	result := h.products.BulkInsertRawMaterials(ownerID, req.Materials)
	if len(result.Failures) > 0 {
		return c.Status(400).JSON(fiber.Map{
			"success":       false,
			"error":         "some entries failed to upload",
			"insertedCount": result.InsertedCount,
			"failedEntries": result.Failures,
		})
	}
	return c.Status(201).JSON(fiber.Map{
		"success":       true,
		"insertedCount": result.InsertedCount,
	})
}

// POST /api/v1/products/bulk-upload (multipart, field "file", .xlsx)
func (h *ProductHandler) ImportRawMaterialsWorkbook(c *fiber.Ctx) error {
	ownerID, err := getOwnerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid user context"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Missing file upload"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Cannot open upload"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Cannot read upload"})
	}

	result, err := h.products.ImportRawMaterialsWorkbook(ownerID, data)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	if len(result.Failures) > 0 {
		return c.Status(400).JSON(fiber.Map{
			"success":       false,
			"error":         "some entries failed to upload",
			"insertedCount": result.InsertedCount,
			"failedEntries": result.Failures,
		})
	}
	return c.Status(201).JSON(fiber.Map{
		"success":       true,
		"insertedCount": result.InsertedCount,
	})
}
