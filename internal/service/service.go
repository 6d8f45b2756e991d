package service

import (
	"hikayat/internal/config"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/repository"
	"hikayat/internal/storage"
)

type Service struct {
	Auth       AuthService
	Story      StoryService
	Community  CommunityService
	Preference PreferenceService
	Tokens     ProfileTokens
	Media      MediaService
	Stats      StatsService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, log logging.Logger) *Service {
	validate := models.NewValidator()
	auth := NewAuthService(rep, validate, cfg.BcryptCost, log)

	return &Service{
		Auth:       auth,
		Story:      NewStoryService(rep, validate, log),
		Community:  NewCommunityService(rep, validate, log),
		Preference: NewPreferenceService(rep),
		Tokens:     NewProfileTokens(cfg.ProfileSecretKey, cfg.ProfileTokenDuration),
		Media:      NewMediaService(rep, auth, storage, cfg, log),
		Stats:      NewStatsService(rep.Stats),
	}
}
