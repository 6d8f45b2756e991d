package repository

import (
	"context"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

type sessionRepository struct {
	docs documents
}

func NewSessionRepository(docs documents) SessionRepository {
	return &sessionRepository{docs: docs}
}

// Get returns nil when the profile is anonymous. A stored session without a
// user id takes the id of the account with its email, or counts as anonymous.
func (r *sessionRepository) Get(ctx context.Context, local localstore.Local) (*models.Session, error) {
	session, err := readDocument[*models.Session](ctx, r.docs, local, models.KeySession)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сессии: %w", err)
	}
	if session == nil || session.UserID != "" {
		return session, nil
	}
	if session.Email == "" {
		return nil, nil
	}

	accounts, err := readDocument[[]models.UserAccount](ctx, r.docs, local, models.KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сессии: %w", err)
	}
	for _, account := range accounts {
		if account.Email == session.Email {
			session.UserID = account.UserID
			return session, nil
		}
	}

	return nil, nil
}

func (r *sessionRepository) Save(ctx context.Context, local localstore.Local, session *models.Session) error {
	if err := writeDocument(ctx, local, models.KeySession, session); err != nil {
		return fmt.Errorf("ошибка при сохранении сессии: %w", err)
	}

	return nil
}

func (r *sessionRepository) Clear(ctx context.Context, local localstore.Local) error {
	if err := local.RemoveItem(ctx, models.KeySession); err != nil {
		return fmt.Errorf("ошибка при удалении сессии: %w", err)
	}

	return nil
}
