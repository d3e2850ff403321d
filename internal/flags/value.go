// Package flags loads the typed feature flags that steer the product form.
package flags

import (
	"fmt"
	"strconv"
	"strings"

	"go-pos-inventory/internal/model"

	"github.com/shopspring/decimal"
)

// Value is a decoded setting. The concrete type is one of Bool, Int,
// Decimal or Text.
type Value interface {
	isValue()
	String() string
}

type Bool bool

type Int int64

type Decimal struct{ decimal.Decimal }

type Text string

func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Decimal) isValue() {}
func (Text) isValue()    {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (i Int) String() string  { return strconv.FormatInt(int64(i), 10) }
func (t Text) String() string { return string(t) }

// Decode converts a raw setting according to its type tag. Only the exact
// literal "true" is a true boolean; numbers that do not parse decode to zero. An
// unknown tag is the only error.
func Decode(s model.Setting) (Value, error) {
	raw := strings.TrimSpace(s.Value)
	switch s.Type {
	case model.SettingBoolean:
		return Bool(s.Value == "true"), nil
	case model.SettingInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Int(0), nil
		}
		return Int(i), nil
	case model.SettingDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Decimal{decimal.Zero}, nil
		}
		return Decimal{d}, nil
	case model.SettingText:
		return Text(s.Value), nil
	}
	return nil, fmt.Errorf("setting %q: unknown type tag %q", s.Key, s.Type)
}
