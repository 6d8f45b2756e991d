package service

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
	"hikayat/internal/repository"
)

type PreferenceService interface {
	// Language returns the stored preference, or the best match of acceptLanguage.
	Language(ctx context.Context, profile localstore.Profile, acceptLanguage string) (models.LanguagePreference, error)
	SetLanguage(ctx context.Context, profile localstore.Profile, lang string) (models.LanguagePreference, error)
}

type preferenceService struct {
	prefs   repository.PreferenceRepository
	matcher language.Matcher
}

func NewPreferenceService(rep *repository.Repository) PreferenceService {
	return &preferenceService{
		prefs: rep.Preference,
		// the first tag is the fallback
		matcher: language.NewMatcher([]language.Tag{language.Arabic, language.English}),
	}
}

func supportedLanguage(lang string) bool {
	return lang == models.LanguageArabic || lang == models.LanguageEnglish
}

func (s *preferenceService) negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return models.LanguageArabic
	}

	_, index, confidence := s.matcher.Match(tags...)
	if confidence == language.No || index != 1 {
		return models.LanguageArabic
	}
	return models.LanguageEnglish
}

func (s *preferenceService) Language(ctx context.Context, profile localstore.Profile, acceptLanguage string) (models.LanguagePreference, error) {
	lang, err := s.prefs.GetLanguage(ctx, profile)
	if err != nil {
		return models.LanguagePreference{}, err
	}

	if !supportedLanguage(lang) {
		lang = s.negotiate(acceptLanguage)
	}

	return models.NewLanguagePreference(lang), nil
}

func (s *preferenceService) SetLanguage(ctx context.Context, profile localstore.Profile, lang string) (models.LanguagePreference, error) {
	if !supportedLanguage(lang) {
		return models.LanguagePreference{}, fmt.Errorf("%w: unsupported language %q", models.ErrValidation, lang)
	}

	if err := s.prefs.SetLanguage(ctx, profile, lang); err != nil {
		return models.LanguagePreference{}, err
	}

	return models.NewLanguagePreference(lang), nil
}
