package repository

import (
	"context"
	"fmt"

	"go-pos-inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, keys []string) ([]model.Setting, error)
	Set(ctx context.Context, setting *model.Setting) error
}

type settingRepo struct {
	db *gorm.DB
}

func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

// Get returns the rows that exist for keys; missing keys are simply absent.
func (r *settingRepo) Get(ctx context.Context, keys []string) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Where(map[string]interface{}{"key": keys}).Find(&settings).Error
	return settings, err
}

// Set upserts a setting.
func (r *settingRepo) Set(ctx context.Context, setting *model.Setting) error {
	if !setting.Type.Valid() {
		return fmt.Errorf("unknown setting type %q", setting.Type)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "description", "updated_at"}),
	}).Create(setting).Error
}
