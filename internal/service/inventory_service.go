package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateCode   = errors.New("product code already exists")
)

type InventoryService interface {
	SaveProduct(ctx context.Context, p *model.Product, actor model.Actor) (uuid.UUID, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetSuppliers(ctx context.Context) ([]model.Supplier, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	wsHub        *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, sRepo repository.SupplierRepository, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		supplierRepo: sRepo,
		wsHub:        hub,
	}
}

// SaveProduct stamps the audit fields, writes the product once and tells the
// connected clients about it.
func (s *inventoryService) SaveProduct(ctx context.Context, p *model.Product, actor model.Actor) (uuid.UUID, error) {
	creating := p.ID == uuid.Nil

	// Friendlier than the unique index error.
	existing, err := s.productRepo.FindByCode(ctx, p.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}
	if existing != nil && existing.ID != p.ID {
		return uuid.Nil, ErrDuplicateCode
	}

	if creating {
		p.CreatedBy = actor.ID
	}
	p.UpdatedBy = actor.ID

	id, err := s.productRepo.Save(ctx, p)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrProductNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}

	action, verb := "product_updated", "updated"
	if creating {
		action, verb = "product_created", "created"
	}
	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: action,
		Product: map[string]interface{}{
			"id":          id,
			"code":        p.Code,
			"description": p.Description,
			"stock":       p.Stock,
			"sale_price":  p.SalePrice,
		},
		User: map[string]interface{}{
			"id":    actor.ID,
			"name":  actor.Name,
			"email": actor.Email,
		},
		Message: fmt.Sprintf("%s %s product '%s'", actor.Name, verb, p.Description),
	})

	return id, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *inventoryService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.supplierRepo.FindAll(ctx)
}
