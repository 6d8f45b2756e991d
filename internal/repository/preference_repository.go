package repository

import (
	"context"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

// The language is kept as a bare string ("ar", "en"), not as JSON.
type preferenceRepository struct{}

func NewPreferenceRepository() PreferenceRepository {
	return &preferenceRepository{}
}

// GetLanguage returns "" when no preference was stored.
func (r *preferenceRepository) GetLanguage(ctx context.Context, local localstore.Local) (string, error) {
	raw, ok, err := local.GetItem(ctx, models.KeyLanguage)
	if err != nil {
		return "", fmt.Errorf("ошибка при получении языка: %w", err)
	}
	if !ok {
		return "", nil
	}

	return string(raw), nil
}

func (r *preferenceRepository) SetLanguage(ctx context.Context, local localstore.Local, lang string) error {
	if err := local.SetItem(ctx, models.KeyLanguage, []byte(lang)); err != nil {
		return fmt.Errorf("ошибка при сохранении языка: %w", err)
	}

	return nil
}
