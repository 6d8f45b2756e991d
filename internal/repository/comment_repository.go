package repository

import (
	"context"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

type commentRepository struct {
	docs documents
}

func NewCommentRepository(docs documents) CommentRepository {
	return &commentRepository{docs: docs}
}

func (r *commentRepository) list(ctx context.Context, local localstore.Local) ([]models.Comment, error) {
	comments, err := readDocument[[]models.Comment](ctx, r.docs, local, models.KeyComments)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}
	return comments, nil
}

// ListByStory returns the comments of storyID, newest first.
func (r *commentRepository) ListByStory(ctx context.Context, local localstore.Local, storyID int64) ([]models.Comment, error) {
	comments, err := r.list(ctx, local)
	if err != nil {
		return nil, err
	}

	result := []models.Comment{}
	for i := len(comments) - 1; i >= 0; i-- {
		if comments[i].StoryID == storyID {
			result = append(result, comments[i])
		}
	}

	return result, nil
}

func (r *commentRepository) Create(ctx context.Context, local localstore.Local, comment *models.Comment) error {
	comments, err := r.list(ctx, local)
	if err != nil {
		return err
	}

	comments = append(comments, *comment)

	if err := writeDocument(ctx, local, models.KeyComments, comments); err != nil {
		return fmt.Errorf("ошибка при создании комментария: %w", err)
	}

	return nil
}

func (r *commentRepository) DeleteByStory(ctx context.Context, local localstore.Local, storyID int64) error {
	comments, err := r.list(ctx, local)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}

	kept := make([]models.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.StoryID != storyID {
			kept = append(kept, comment)
		}
	}
	if len(kept) == len(comments) {
		return nil
	}

	if err := writeDocument(ctx, local, models.KeyComments, kept); err != nil {
		return fmt.Errorf("ошибка при удалении комментариев: %w", err)
	}

	return nil
}
