package form

import (
	"strings"

	"go-pos-inventory/internal/flags"
	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rule identifies one validation rule. Pipeline rules run in declaration order.
type Rule int

const (
	RuleCodeRequired Rule = iota + 1
	RuleDescriptionRequired
	RuleSupplierRequired
	RulePurchasePricePositive
	RuleSalePricePositive
	RuleSaleNotBelowPurchase
	RuleStockPositive

	// RuleSupplierUnknown is checked by the session after the pipeline, against
	// the catalog loaded for that session.
	RuleSupplierUnknown
)

// Draft is the candidate record as typed by the user. Prices are nullable so
// that "not entered" differs from zero.
type Draft struct {
	ID            *uuid.UUID          `json:"id,omitempty"`
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	SupplierID    uint                `json:"supplier_id"`
	Unit          model.Unit          `json:"unit"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price"`
	SalePrice     decimal.NullDecimal `json:"sale_price"`
	Stock         int                 `json:"stock"`
}

// DraftFromProduct seeds an edit session with the stored record.
func DraftFromProduct(p *model.Product) Draft {
	id := p.ID
	return Draft{
		ID:            &id,
		Code:          p.Code,
		Description:   p.Description,
		SupplierID:    p.SupplierID,
		Unit:          p.Unit,
		PurchasePrice: decimal.NullDecimal{Decimal: p.PurchasePrice, Valid: true},
		SalePrice:     decimal.NullDecimal{Decimal: p.SalePrice, Valid: true},
		Stock:         p.Stock,
	}
}

// Product converts a validated draft into the persistence model.
func (d Draft) Product() *model.Product {
	unit := d.Unit
	if unit == "" {
		unit = model.UnitPiece
	}
	p := &model.Product{
		Code:          strings.TrimSpace(d.Code),
		Description:   strings.TrimSpace(d.Description),
		SupplierID:    d.SupplierID,
		Unit:          unit,
		PurchasePrice: stored(d.PurchasePrice).Decimal,
		SalePrice:     stored(d.SalePrice).Decimal,
		Stock:         d.Stock,
	}
	if d.ID != nil {
		p.ID = *d.ID
	}
	return p
}

// priceScale matches the decimal(12,2) price columns.
const priceScale = 2

// stored is the price as the products table will hold it.
func stored(p decimal.NullDecimal) decimal.NullDecimal {
	if !p.Valid {
		return p
	}
	return decimal.NullDecimal{Decimal: p.Decimal.Round(priceScale), Valid: true}
}

// Validate runs the business rules in order and stops at the first failure.
// Prices are checked at the scale they are stored with. It returns nil or a
// *ValidationError.
func Validate(d Draft, f flags.Flags) error {
	d.PurchasePrice = stored(d.PurchasePrice)
	d.SalePrice = stored(d.SalePrice)
	switch {
	case strings.TrimSpace(d.Code) == "":
		return invalid(RuleCodeRequired, "code", "code is required")
	case strings.TrimSpace(d.Description) == "":
		return invalid(RuleDescriptionRequired, "description", "description is required")
	case d.SupplierID == 0:
		return invalid(RuleSupplierRequired, "supplier_id", "supplier is required")
	case !d.PurchasePrice.Valid || !d.PurchasePrice.Decimal.IsPositive():
		return invalid(RulePurchasePricePositive, "purchase_price", "purchase price must be greater than zero")
	case !d.SalePrice.Valid || !d.SalePrice.Decimal.IsPositive():
		return invalid(RuleSalePricePositive, "sale_price", "sale price must be greater than zero")
	case d.SalePrice.Decimal.LessThan(d.PurchasePrice.Decimal):
		return invalid(RuleSaleNotBelowPurchase, "sale_price", "sale price below purchase price")
	case !f.AllowZeroStockSale && d.Stock <= 0:
		return invalid(RuleStockPositive, "stock", "stock must be greater than zero")
	case d.Stock < 0:
		return invalid(RuleStockPositive, "stock", "stock cannot be negative")
	}
	return nil
}

func invalid(rule Rule, field, msg string) error {
	return &ValidationError{Rule: rule, Field: field, Message: msg}
}
