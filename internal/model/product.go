package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the unit of measure a product is sold in.
type Unit string

const (
	UnitPiece    Unit = "PIECE"
	UnitKilogram Unit = "KILOGRAM"
	UnitLiter    Unit = "LITER"
	UnitMeter    Unit = "METER"
	UnitPackage  Unit = "PACKAGE"
	UnitBox      Unit = "BOX"
)

// Units lists every accepted unit of measure in display order.
var Units = []Unit{UnitPiece, UnitKilogram, UnitLiter, UnitMeter, UnitPackage, UnitBox}

func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit accepts any casing; an empty string maps to UnitPiece.
func ParseUnit(s string) (Unit, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return UnitPiece, nil
	}
	u := Unit(s)
	if !u.Valid() {
		return "", fmt.Errorf("unknown unit of measure %q", s)
	}
	return u, nil
}

type Product struct {
	BaseModel
	Code          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description   string          `gorm:"type:varchar(255);not null" json:"description"`
	SupplierID    uint            `gorm:"index;not null" json:"supplier_id"`
	Supplier      *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Unit          Unit            `gorm:"type:varchar(20);not null;default:'PIECE'" json:"unit"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price"`
	Stock         int             `gorm:"not null;default:0" json:"stock"`
}
