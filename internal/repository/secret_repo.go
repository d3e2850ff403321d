package repository

import (
	"context"
	"errors"

	"go-pos-inventory/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSecretNotSet = errors.New("secret is not configured")

// SecretRepository never hands out stored values; it only answers whether a
// candidate matches.
type SecretRepository interface {
	Verify(ctx context.Context, key, candidate string) (bool, error)
	Set(ctx context.Context, key, plain, updatedBy string) error
}

type secretRepo struct {
	db *gorm.DB
}

func NewSecretRepo(db *gorm.DB) SecretRepository {
	return &secretRepo{db: db}
}

func (r *secretRepo) Verify(ctx context.Context, key, candidate string) (bool, error) {
	var secret model.Secret
	if err := r.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&secret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrSecretNotSet
		}
		return false, err
	}

	err := bcrypt.CompareHashAndPassword([]byte(secret.Hash), []byte(candidate))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *secretRepo) Set(ctx context.Context, key, plain, updatedBy string) error {
	if plain == "" {
		return errors.New("secret must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	secret := model.Secret{Key: key, Hash: string(hash), UpdatedBy: updatedBy}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"hash", "updated_by", "updated_at"}),
	}).Create(&secret).Error
}
