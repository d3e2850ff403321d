package flags

import (
	"context"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/pkg/logger"

	"github.com/sirupsen/logrus"
)

const (
	KeyAllowZeroStockSale  = "allow-zero-stock-sale"
	KeyDefaultMinimumStock = "default-minimum-stock"
)

// Keys is the fixed set the product form asks for.
var Keys = []string{KeyAllowZeroStockSale, KeyDefaultMinimumStock}

// Flags is an immutable snapshot taken once per form session.
type Flags struct {
	AllowZeroStockSale  bool `json:"allow_zero_stock_sale"`
	DefaultMinimumStock int  `json:"default_minimum_stock"`
}

func Defaults() Flags {
	return Flags{
		AllowZeroStockSale:  false,
		DefaultMinimumStock: 3,
	}
}

// Source is the remote key/value store.
type Source interface {
	Get(ctx context.Context, keys []string) ([]model.Setting, error)
}

type Provider struct {
	source  Source
	log     *logrus.Logger
	timeout time.Duration
}

func NewProvider(source Source, log *logrus.Logger) *Provider {
	return &Provider{source: source, log: log, timeout: 5 * time.Second}
}

// LoadValues fetches and decodes keys. Rows with an unknown type tag are
// dropped and logged.
func (p *Provider) LoadValues(ctx context.Context, keys []string) (map[string]Value, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rows, err := p.source.Get(ctx, keys)
	if err != nil {
		return nil, err
	}

	values := make(map[string]Value, len(rows))
	for _, row := range rows {
		v, err := Decode(row)
		if err != nil {
			p.log.WithError(err).WithField("key", row.Key).Warn("skipping setting")
			continue
		}
		values[row.Key] = v
	}
	return values, nil
}

// Load never fails: on a fetch error it logs and returns Defaults. A key that
// is missing or carries an unexpected variant keeps its default.
func (p *Provider) Load(ctx context.Context) Flags {
	f := Defaults()

	values, err := p.LoadValues(ctx, Keys)
	if err != nil {
		logger.LogError(p.log, "flags", "Load", "fetch settings, using defaults", Keys, err)
		return f
	}

	if v, ok := values[KeyAllowZeroStockSale].(Bool); ok {
		f.AllowZeroStockSale = bool(v)
	} else if _, present := values[KeyAllowZeroStockSale]; present {
		p.log.WithField("key", KeyAllowZeroStockSale).Warn("setting is not a boolean; keeping default")
	}

	if v, ok := values[KeyDefaultMinimumStock].(Int); ok {
		f.DefaultMinimumStock = int(v)
	} else if _, present := values[KeyDefaultMinimumStock]; present {
		p.log.WithField("key", KeyDefaultMinimumStock).Warn("setting is not an integer; keeping default")
	}

	return f
}
