package service

import (
	"context"

	"hikayat/internal/models"
	"hikayat/internal/repository"
)

type StatsService interface {
	Stats(ctx context.Context) (models.StorageStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) Stats(ctx context.Context) (models.StorageStats, error) {
	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		return models.StorageStats{}, err
	}

	return stats, nil
}
