package repository

import (
	"context"
	"fmt"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
)

type accountRepository struct {
	docs documents
}

func NewAccountRepository(docs documents) AccountRepository {
	return &accountRepository{docs: docs}
}

func (r *accountRepository) List(ctx context.Context, local localstore.Local) ([]models.UserAccount, error) {
	accounts, err := readDocument[[]models.UserAccount](ctx, r.docs, local, models.KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}
	if accounts == nil {
		accounts = []models.UserAccount{}
	}

	return accounts, nil
}

// GetByEmail matches the email exactly, without case folding.
func (r *accountRepository) GetByEmail(ctx context.Context, local localstore.Local, email string) (*models.UserAccount, error) {
	accounts, err := r.List(ctx, local)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if accounts[i].Email == email {
			return &accounts[i], nil
		}
	}

	return nil, fmt.Errorf("пользователь с email %s: %w", email, models.ErrNotFound)
}

func (r *accountRepository) GetByID(ctx context.Context, local localstore.Local, userID string) (*models.UserAccount, error) {
	accounts, err := r.List(ctx, local)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if accounts[i].UserID == userID {
			return &accounts[i], nil
		}
	}

	return nil, fmt.Errorf("пользователь %s: %w", userID, models.ErrNotFound)
}

func (r *accountRepository) Create(ctx context.Context, local localstore.Local, account *models.UserAccount) error {
	accounts, err := r.List(ctx, local)
	if err != nil {
		return err
	}

	for _, existing := range accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("пользователь с email %s: %w", account.Email, models.ErrDuplicateEmail)
		}
	}

	accounts = append(accounts, *account)

	if err := writeDocument(ctx, local, models.KeyAccounts, accounts); err != nil {
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *accountRepository) UpdateAvatar(ctx context.Context, local localstore.Local, userID, avatar string) error {
	accounts, err := r.List(ctx, local)
	if err != nil {
		return err
	}

	found := false
	for i := range accounts {
		if accounts[i].UserID == userID {
			accounts[i].Avatar = avatar
			found = true
		}
	}
	if !found {
		return fmt.Errorf("пользователь %s: %w", userID, models.ErrNotFound)
	}

	if err := writeDocument(ctx, local, models.KeyAccounts, accounts); err != nil {
		return fmt.Errorf("ошибка при обновлении аватара: %w", err)
	}

	return nil
}
