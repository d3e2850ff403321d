package model

import "time"

// SettingType tags the raw text of a Setting with how it must be decoded.
type SettingType string

const (
	SettingBoolean SettingType = "boolean"
	SettingInteger SettingType = "integer"
	SettingDecimal SettingType = "decimal"
	SettingText    SettingType = "text"
)

func (t SettingType) Valid() bool {
	switch t {
	case SettingBoolean, SettingInteger, SettingDecimal, SettingText:
		return true
	}
	return false
}

// Setting is one row of the remote key/value configuration store.
type Setting struct {
	Key         string      `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value       string      `gorm:"type:text;not null" json:"value"`
	Type        SettingType `gorm:"type:varchar(20);not null" json:"type"`
	Description string      `gorm:"type:text" json:"description"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Secret keeps only the bcrypt hash of a shared secret.
type Secret struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Hash      string    `gorm:"type:varchar(255);not null" json:"-"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockMasterKey is the secret that authorizes stock quantity changes.
const StockMasterKey = "clave_maestra_stock"
