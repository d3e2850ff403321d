package form

import (
	"errors"
	"testing"

	"go-pos-inventory/internal/flags"

	"github.com/shopspring/decimal"
)

func price(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func validDraft() Draft {
	return Draft{
		Code:          "A1",
		Description:   "Widget",
		SupplierID:    1,
		PurchasePrice: price("10.00"),
		SalePrice:     price("15.00"),
		Stock:         5,
	}
}

func ruleOf(t *testing.T, err error) Rule {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	return ve.Rule
}

func TestValidateRules(t *testing.T) {
	strict := flags.Defaults()

	tests := []struct {
		name   string
		mutate func(d *Draft)
		want   Rule
	}{
		{"blank code", func(d *Draft) { d.Code = "   " }, RuleCodeRequired},
		{"empty description", func(d *Draft) { d.Description = "" }, RuleDescriptionRequired},
		{"no supplier", func(d *Draft) { d.SupplierID = 0 }, RuleSupplierRequired},
		{"purchase price missing", func(d *Draft) { d.PurchasePrice = decimal.NullDecimal{} }, RulePurchasePricePositive},
		{"purchase price zero", func(d *Draft) { d.PurchasePrice = price("0") }, RulePurchasePricePositive},
		{"purchase price negative", func(d *Draft) { d.PurchasePrice = price("-1") }, RulePurchasePricePositive},
		{"sale price missing", func(d *Draft) { d.SalePrice = decimal.NullDecimal{} }, RuleSalePricePositive},
		{"sale price zero", func(d *Draft) { d.SalePrice = price("0.00") }, RuleSalePricePositive},
		{"sale below purchase", func(d *Draft) { d.SalePrice = price("9.00") }, RuleSaleNotBelowPurchase},
		{"sale one cent below", func(d *Draft) { d.SalePrice = price("9.99") }, RuleSaleNotBelowPurchase},
		{"zero stock", func(d *Draft) { d.Stock = 0 }, RuleStockPositive},
		{"negative stock", func(d *Draft) { d.Stock = -1 }, RuleStockPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			if got := ruleOf(t, Validate(d, strict)); got != tt.want {
				t.Fatalf("expected rule %d, got %d", tt.want, got)
			}
		})
	}
}

func TestValidatePasses(t *testing.T) {
	strict := flags.Defaults()

	tests := []struct {
		name   string
		mutate func(d *Draft)
		flags  flags.Flags
	}{
		{"valid", func(d *Draft) {}, strict},
		{"sale equals purchase", func(d *Draft) { d.SalePrice = price("10.00") }, strict},
		{"stock one", func(d *Draft) { d.Stock = 1 }, strict},
		{"zero stock allowed", func(d *Draft) { d.Stock = 0 }, flags.Flags{AllowZeroStockSale: true}},
		{"surrounding whitespace", func(d *Draft) { d.Code = " A1 " }, strict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			if err := Validate(d, tt.flags); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateNegativeStockRejectedEvenWhenZeroAllowed(t *testing.T) {
	d := validDraft()
	d.Stock = -3
	if got := ruleOf(t, Validate(d, flags.Flags{AllowZeroStockSale: true})); got != RuleStockPositive {
		t.Fatalf("expected stock rule, got %d", got)
	}
}

func TestValidateReportsFirstViolatedRule(t *testing.T) {
	strict := flags.Defaults()

	// Everything wrong: code wins.
	all := Draft{Stock: 0}
	if got := ruleOf(t, Validate(all, strict)); got != RuleCodeRequired {
		t.Fatalf("expected code rule first, got %d", got)
	}

	// Supplier missing and sale below purchase and zero stock: supplier wins.
	d := validDraft()
	d.SupplierID = 0
	d.SalePrice = price("1.00")
	d.Stock = 0
	if got := ruleOf(t, Validate(d, strict)); got != RuleSupplierRequired {
		t.Fatalf("expected supplier rule, got %d", got)
	}

	// Sale below purchase and zero stock: price ordering wins.
	d = validDraft()
	d.SalePrice = price("9.00")
	d.Stock = 0
	if got := ruleOf(t, Validate(d, strict)); got != RuleSaleNotBelowPurchase {
		t.Fatalf("expected sale/purchase rule, got %d", got)
	}
}

func TestValidateMessagesAreDistinct(t *testing.T) {
	seen := map[string]Rule{}
	breakers := []func(d *Draft){
		func(d *Draft) { d.Code = "" },
		func(d *Draft) { d.Description = "" },
		func(d *Draft) { d.SupplierID = 0 },
		func(d *Draft) { d.PurchasePrice = price("0") },
		func(d *Draft) { d.SalePrice = price("0") },
		func(d *Draft) { d.SalePrice = price("1") },
		func(d *Draft) { d.Stock = 0 },
	}
	for _, br := range breakers {
		d := validDraft()
		br(&d)
		var ve *ValidationError
		if !errors.As(Validate(d, flags.Defaults()), &ve) {
			t.Fatal("expected validation error")
		}
		if prev, dup := seen[ve.Message]; dup {
			t.Fatalf("rules %d and %d share message %q", prev, ve.Rule, ve.Message)
		}
		seen[ve.Message] = ve.Rule
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 distinct messages, got %d", len(seen))
	}
}

func TestValidateSalePriceMessage(t *testing.T) {
	d := validDraft()
	d.SalePrice = price("9.00")
	err := Validate(d, flags.Defaults())
	if err == nil || err.Error() != "sale price below purchase price" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDraftProduct(t *testing.T) {
	d := validDraft()
	d.Code = "  A1 "
	p := d.Product()
	if p.Code != "A1" {
		t.Fatalf("expected trimmed code, got %q", p.Code)
	}
	if p.Unit != "PIECE" {
		t.Fatalf("expected default unit PIECE, got %q", p.Unit)
	}
	if !p.SalePrice.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("unexpected sale price %s", p.SalePrice)
	}
}

func TestValidateChecksPricesAtStoredScale(t *testing.T) {
	tests := []struct {
		name     string
		purchase string
		sale     string
		want     Rule
	}{
		{"purchase rounds to zero", "0.004", "15.00", RulePurchasePricePositive},
		{"sale rounds to zero", "0.004", "0.004", RulePurchasePricePositive},
		{"sale alone rounds to zero", "0.01", "0.004", RuleSalePricePositive},
		{"equal once rounded", "10.004", "10.00", 0},
		{"sub-cent margin is not a margin", "10.00", "10.001", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			d.PurchasePrice = price(tt.purchase)
			d.SalePrice = price(tt.sale)
			err := Validate(d, flags.Defaults())
			if tt.want == 0 {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				return
			}
			if got := ruleOf(t, err); got != tt.want {
				t.Fatalf("expected rule %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDraftProductRoundsPrices(t *testing.T) {
	d := validDraft()
	d.PurchasePrice = price("10.006")
	d.SalePrice = price("15.994")
	p := d.Product()
	if !p.PurchasePrice.Equal(decimal.RequireFromString("10.01")) {
		t.Fatalf("purchase price %s, want 10.01", p.PurchasePrice)
	}
	if !p.SalePrice.Equal(decimal.RequireFromString("15.99")) {
		t.Fatalf("sale price %s, want 15.99", p.SalePrice)
	}
}
