package repository

import (
	"context"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

type statsRepository struct {
	store localstore.Store
}

func NewStatsRepository(store localstore.Store) StatsRepository {
	return &statsRepository{store: store}
}

func (r *statsRepository) Stats(ctx context.Context) (models.StorageStats, error) {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return models.StorageStats{}, fmt.Errorf("ошибка при подсчёте записей хранилища: %w", err)
	}

	return stats, nil
}
