package repository

import (
	"context"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

type storyRepository struct {
	docs documents
}

func NewStoryRepository(docs documents) StoryRepository {
	return &storyRepository{docs: docs}
}

func checkCollection(collection string) error {
	if collection != models.KeyStories && collection != models.KeyDrafts {
		return fmt.Errorf("неизвестная коллекция %q", collection)
	}
	return nil
}

// List returns the records of collection in insertion order.
func (r *storyRepository) List(ctx context.Context, local localstore.Local, collection string) ([]models.StoryRecord, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	records, err := readDocument[[]models.StoryRecord](ctx, r.docs, local, collection)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении %s: %w", collection, err)
	}
	if records == nil {
		records = []models.StoryRecord{}
	}

	return records, nil
}

func (r *storyRepository) GetByID(ctx context.Context, local localstore.Local, collection string, id int64) (*models.StoryRecord, error) {
	records, err := r.List(ctx, local, collection)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}

	return nil, fmt.Errorf("запись %d в %s: %w", id, collection, models.ErrNotFound)
}

func (r *storyRepository) Insert(ctx context.Context, local localstore.Local, collection string, record *models.StoryRecord) error {
	records, err := r.List(ctx, local, collection)
	if err != nil {
		return err
	}

	records = append(records, *record)

	if err := writeDocument(ctx, local, collection, records); err != nil {
		return fmt.Errorf("ошибка при создании записи: %w", err)
	}

	return nil
}

// Replace overwrites the record with the same id.
func (r *storyRepository) Replace(ctx context.Context, local localstore.Local, collection string, record *models.StoryRecord) error {
	records, err := r.List(ctx, local, collection)
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = *record
			found = true
		}
	}
	if !found {
		return fmt.Errorf("запись %d в %s: %w", record.ID, collection, models.ErrNotFound)
	}

	if err := writeDocument(ctx, local, collection, records); err != nil {
		return fmt.Errorf("ошибка при обновлении записи: %w", err)
	}

	return nil
}

// Delete filters id out of the collection. An absent id is not an error.
func (r *storyRepository) Delete(ctx context.Context, local localstore.Local, collection string, id int64) error {
	records, err := r.List(ctx, local, collection)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, record := range records {
		if record.ID != id {
			kept = append(kept, record)
		}
	}

	if err := writeDocument(ctx, local, collection, kept); err != nil {
		return fmt.Errorf("ошибка при удалении записи: %w", err)
	}

	return nil
}

// MaxID is the largest id used by either stories or drafts.
func (r *storyRepository) MaxID(ctx context.Context, local localstore.Local) (int64, error) {
	var maxID int64

	for _, collection := range []string{models.KeyStories, models.KeyDrafts} {
		records, err := r.List(ctx, local, collection)
		if err != nil {
			return 0, err
		}
		for _, record := range records {
			if record.ID > maxID {
				maxID = record.ID
			}
		}
	}

	return maxID, nil
}
