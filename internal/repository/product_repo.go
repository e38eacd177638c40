package repository

import (
	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindByOwner(ownerID uuid.UUID) ([]model.Product, error)
	FindByOwnerAndKind(ownerID uuid.UUID, kind model.ProductKind) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	SearchByName(ownerID uuid.UUID, term string) ([]model.Product, error)
	UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	DeductStock(tx *gorm.DB, id uuid.UUID, amount float64, updatedBy string) (int64, error)
	AdjustStock(tx *gorm.DB, id uuid.UUID, delta float64, updatedBy string) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create menerima tx agar insert bisa ikut dalam transaksi StockLedger
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindByOwner(ownerID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Ingredients").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByOwnerAndKind(ownerID uuid.UUID, kind model.ProductKind) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Ingredients").
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(r.db, id)
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Preload("Ingredients").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) SearchByName(ownerID uuid.UUID, term string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("owner_id = ? AND name LIKE ?", ownerID, "%"+term+"%").
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	res := tx.Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeductStock performs a conditional single-statement decrement. The WHERE
// guard on current stock makes the read-check-write race-free: if a
// concurrent creation already consumed the material, RowsAffected is 0 and
// the caller must abort.
func (r *productRepo) DeductStock(tx *gorm.DB, id uuid.UUID, amount float64, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", amount),
			"updated_by": updatedBy,
		})
	return res.RowsAffected, res.Error
}

// AdjustStock applies an unguarded delta (negative deltas subtract). The
// caller accepts that the database check constraint rejects any delta that
// would drive stock negative.
func (r *productRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta float64, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Product{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&model.Ingredient{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}
