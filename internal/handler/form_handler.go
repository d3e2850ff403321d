package handler

import (
	"context"
	"errors"
	"time"

	"go-pos-inventory/internal/form"
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/pkg/logger"
	"go-pos-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type openFormRequest struct {
	ProductID string `json:"product_id" validate:"omitempty,uuid"`
}

type draftRequest struct {
	Code          string              `json:"code" validate:"max=50"`
	Description   string              `json:"description" validate:"max=255"`
	SupplierID    uint                `json:"supplier_id"`
	Unit          string              `json:"unit" validate:"unit"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price"`
	SalePrice     decimal.NullDecimal `json:"sale_price"`
	Stock         int                 `json:"stock"`
}

type keyRequest struct {
	Key string `json:"key" validate:"required"`
}

func (r draftRequest) draft() (form.Draft, error) {
	unit, err := model.ParseUnit(r.Unit)
	if err != nil {
		return form.Draft{}, err
	}
	return form.Draft{
		Code:          r.Code,
		Description:   r.Description,
		SupplierID:    r.SupplierID,
		Unit:          unit,
		PurchasePrice: r.PurchasePrice,
		SalePrice:     r.SalePrice,
		Stock:         r.Stock,
	}, nil
}

// FormHandler exposes product form sessions over HTTP.
type FormHandler struct {
	registry  *form.Registry
	inventory service.InventoryService
	flags     form.FlagLoader
	stockKeys service.StockKeyService
	noticeTTL time.Duration
	log       *logrus.Logger
}

func NewFormHandler(registry *form.Registry, inv service.InventoryService, flags form.FlagLoader, keys service.StockKeyService, noticeTTL time.Duration, log *logrus.Logger) *FormHandler {
	return &FormHandler{
		registry:  registry,
		inventory: inv,
		flags:     flags,
		stockKeys: keys,
		noticeTTL: noticeTTL,
		log:       log,
	}
}

// supplierCatalog adapts the inventory service to form.SupplierLister.
type supplierCatalog struct {
	inv service.InventoryService
}

func (s supplierCatalog) FindAll(ctx context.Context) ([]model.Supplier, error) {
	return s.inv.GetSuppliers(ctx)
}

func (h *FormHandler) dependencies(actor model.Actor) form.Dependencies {
	return form.Dependencies{
		Flags:     h.flags,
		Suppliers: supplierCatalog{inv: h.inventory},
		Products:  h.inventory,
		Saver:     h.inventory,
		Verifier:  h.stockKeys.VerifierFor(actor),
		Log:       h.log,
		NoticeTTL: h.noticeTTL,
	}
}

// formPrivilege is what opening a form takes: editing an existing product is
// an update, anything else a create.
func formPrivilege(productID *uuid.UUID) string {
	if productID != nil {
		return "product:update"
	}
	return "product:create"
}

func (h *FormHandler) session(c *fiber.Ctx) (*form.Session, error) {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, c.Status(400).JSON(fiber.Map{"error": "Invalid form ID"})
	}
	s, ok := h.registry.Get(id, getUserID(c))
	if !ok {
		return nil, c.Status(404).JSON(fiber.Map{"error": "Form session not found"})
	}
	return s, nil
}

// Open starts a create session, or an edit session when product_id is given.
func (h *FormHandler) Open(c *fiber.Ctx) error {
	var req openFormRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs)})
	}

	var productID *uuid.UUID
	if req.ProductID != "" {
		id, _ := parseUUID(req.ProductID)
		productID = &id
	}
	if need := formPrivilege(productID); !middleware.HasPrivilege(c, need) {
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + need + "' privilege",
		})
	}

	actor := actorFrom(c)
	s, err := form.Open(c.UserContext(), h.dependencies(actor), actor, productID)
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	if err != nil {
		logger.LogError(h.log, "handler", "Open", "open product form", req, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to open product form"})
	}
	h.registry.Add(s)

	return c.Status(201).JSON(fiber.Map{"message": "Form opened", "data": s.View()})
}

func (h *FormHandler) Get(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	return c.JSON(s.View())
}

func (h *FormHandler) Submit(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req draftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs)})
	}
	d, err := req.draft()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := s.Submit(c.UserContext(), d)
	if err != nil {
		return h.formError(c, s, err)
	}
	return c.JSON(fiber.Map{"message": "Product saved", "id": id, "data": s.View()})
}

func (h *FormHandler) Unlock(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	if err := s.RequestUnlock(); err != nil {
		return h.formError(c, s, err)
	}
	return c.JSON(fiber.Map{"gate": s.GateState()})
}

// SubmitKey checks the master key and, on success, saves the draft that was
// waiting for it.
func (h *FormHandler) SubmitKey(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req keyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs)})
	}

	id, err := s.SubmitKey(c.UserContext(), req.Key)
	if err != nil {
		return h.formError(c, s, err)
	}
	if id == uuid.Nil {
		return c.JSON(fiber.Map{"message": "Stock unlocked", "data": s.View()})
	}
	return c.JSON(fiber.Map{"message": "Product saved", "id": id, "data": s.View()})
}

func (h *FormHandler) DismissNotice(c *fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	s.DismissNotice()
	return c.SendStatus(204)
}

func (h *FormHandler) Close(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid form ID"})
	}
	if !h.registry.Remove(id, getUserID(c)) {
		return c.Status(404).JSON(fiber.Map{"error": "Form session not found"})
	}
	return c.SendStatus(204)
}

func (h *FormHandler) formError(c *fiber.Ctx, s *form.Session, err error) error {
	var (
		ve *form.ValidationError
		ae *form.AuthorizationError
		pe *form.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(422).JSON(fiber.Map{"error": ve.Message, "rule": ve.Rule, "field": ve.Field})
	case errors.Is(err, form.ErrStockKeyRequired):
		return c.Status(409).JSON(fiber.Map{"error": "unlock_required", "message": err.Error(), "gate": s.GateState()})
	case errors.Is(err, form.ErrNotPrompting):
		return c.Status(409).JSON(fiber.Map{"error": err.Error(), "gate": s.GateState()})
	case errors.Is(err, service.ErrTooManyAttempts):
		return c.Status(429).JSON(fiber.Map{"error": service.ErrTooManyAttempts.Error()})
	case errors.As(err, &ae):
		return c.Status(403).JSON(fiber.Map{"error": ae.Error()})
	case errors.As(err, &pe):
		return c.Status(502).JSON(fiber.Map{"error": pe.Error()})
	case errors.Is(err, form.ErrSessionClosed):
		return c.Status(404).JSON(fiber.Map{"error": "Form session not found"})
	}
	logger.LogError(h.log, "handler", "formError", "unmapped form error", s.ID, err)
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
