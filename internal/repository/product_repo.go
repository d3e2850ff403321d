package repository

import (
	"context"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	// Save updates by ID when one is set, otherwise inserts. It issues exactly one write.
	Save(ctx context.Context, product *model.Product) (uuid.UUID, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	Stats(ctx context.Context, minimumStock int) (*InventoryStats, error)
}

// InventoryStats feeds the dashboard overview.
type InventoryStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	MinimumStock   int             `json:"minimum_stock"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Save(ctx context.Context, product *model.Product) (uuid.UUID, error) {
	if product.ID == uuid.Nil {
		if err := r.db.WithContext(ctx).Omit("Supplier").Create(product).Error; err != nil {
			return uuid.Nil, err
		}
		return product.ID, nil
	}

	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"code":           product.Code,
			"description":    product.Description,
			"supplier_id":    product.SupplierID,
			"unit":           product.Unit,
			"purchase_price": product.PurchasePrice,
			"sale_price":     product.SalePrice,
			"stock":          product.Stock,
			"updated_by":     product.UpdatedBy,
		})
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return product.ID, nil
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Supplier").Order("code ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Stats(ctx context.Context, minimumStock int) (*InventoryStats, error) {
	stats := InventoryStats{MinimumStock: minimumStock}
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < ?", minimumStock).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	// Valuation at sale price
	row := db.Model(&model.Product{}).Select("COALESCE(SUM(stock * sale_price), 0)").Row()
	if err := row.Scan(&stats.TotalValuation); err != nil {
		return nil, err
	}
	stats.TotalValuation = stats.TotalValuation.Round(2)
	return &stats, nil
}
