package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikayat/internal/models"
)

func TestPreferenceService(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"Без заголовка арабский", "", "ar"},
		{"Английский браузер", "en-US,en;q=0.9", "en"},
		{"Арабский браузер", "ar-EG", "ar"},
		{"Неподдерживаемый язык", "fr-FR", "ar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref, err := env.svc.Preference.Language(ctx, env.profile, tt.accept)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pref.Language)
		})
	}

	t.Run("Сохранённый выбор важнее заголовка", func(t *testing.T) {
		pref, err := env.svc.Preference.SetLanguage(ctx, env.profile, "en")
		require.NoError(t, err)
		assert.Equal(t, "ltr", pref.Direction)

		pref, err = env.svc.Preference.Language(ctx, env.profile, "ar")
		require.NoError(t, err)
		assert.Equal(t, models.LanguagePreference{Language: "en", Direction: "ltr"}, pref)
	})

	t.Run("Неизвестный язык", func(t *testing.T) {
		_, err := env.svc.Preference.SetLanguage(ctx, env.profile, "de")
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}
