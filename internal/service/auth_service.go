package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, profile localstore.Profile, req models.RegisterRequest) (*models.UserAccount, error)
	Login(ctx context.Context, profile localstore.Profile, email, password string) (*models.Session, error)
	Logout(ctx context.Context, profile localstore.Profile) error
	CurrentSession(ctx context.Context, profile localstore.Profile) (*models.Session, bool, error)
	UpdateAvatar(ctx context.Context, profile localstore.Profile, avatar string) (*models.Session, error)
}

type authService struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	validate *validator.Validate
	cost     int
	log      logging.Logger
	now      func() time.Time
}

func NewAuthService(rep *repository.Repository, validate *validator.Validate, cost int, log logging.Logger) AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &authService{
		accounts: rep.Account,
		sessions: rep.Session,
		validate: validate,
		cost:     cost,
		log:      log,
		now:      time.Now,
	}
}

// Register appends a new account. It does not log the user in.
func (s *authService) Register(ctx context.Context, profile localstore.Profile, req models.RegisterRequest) (*models.UserAccount, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	account := &models.UserAccount{
		UserID:       uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Avatar:       models.DefaultAvatar,
		RegisteredAt: s.now().UTC(),
	}

	err = profile.Atomic(ctx, func(tx localstore.Local) error {
		return s.accounts.Create(ctx, tx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при регистрации: %w", err)
	}

	s.log.Info(ctx, "зарегистрирован пользователь", "profile", profile.ID(), "user", account.UserID)
	return account, nil
}

// Login replaces any existing session on success and leaves it untouched on failure.
func (s *authService) Login(ctx context.Context, profile localstore.Profile, email, password string) (*models.Session, error) {
	account, err := s.accounts.GetByEmail(ctx, profile, email)
	if err != nil {
		return nil, fmt.Errorf("ошибка аутентификации: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("ошибка аутентификации: %w", models.ErrInvalidCredential)
		}
		return nil, fmt.Errorf("ошибка проверки пароля: %w", errors.Join(models.ErrInvalidCredential, err))
	}

	session := models.NewSession(account)
	if err := s.sessions.Save(ctx, profile, session); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "вход выполнен", "profile", profile.ID(), "user", session.UserID)
	return session, nil
}

func (s *authService) Logout(ctx context.Context, profile localstore.Profile) error {
	return s.sessions.Clear(ctx, profile)
}

func (s *authService) CurrentSession(ctx context.Context, profile localstore.Profile) (*models.Session, bool, error) {
	session, err := s.sessions.Get(ctx, profile)
	if err != nil {
		return nil, false, err
	}

	return session, session != nil, nil
}

// UpdateAvatar changes the avatar of the account and of the session together.
func (s *authService) UpdateAvatar(ctx context.Context, profile localstore.Profile, avatar string) (*models.Session, error) {
	var updated *models.Session

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := s.sessions.Get(ctx, tx)
		if err != nil {
			return err
		}
		if session == nil {
			return models.ErrUnauthenticated
		}

		if err := s.accounts.UpdateAvatar(ctx, tx, session.UserID, avatar); err != nil {
			return err
		}

		session.Avatar = avatar
		if err := s.sessions.Save(ctx, tx, session); err != nil {
			return err
		}

		updated = session
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при обновлении аватара: %w", err)
	}

	return updated, nil
}

// requireSession returns ErrUnauthenticated for anonymous profiles.
func requireSession(ctx context.Context, sessions repository.SessionRepository, local localstore.Local) (*models.Session, error) {
	session, err := sessions.Get(ctx, local)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	return session, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s %s", models.ErrValidation, verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Errorf("%w: %v", models.ErrValidation, err)
}
