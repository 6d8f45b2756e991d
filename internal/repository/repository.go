package repository

import (
	"context"

	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
)

// Every repository works on the localstore.Local it is given, so the same
// method can run directly against a profile or inside Profile.Atomic.

type AccountRepository interface {
	List(ctx context.Context, local localstore.Local) ([]models.UserAccount, error)
	GetByEmail(ctx context.Context, local localstore.Local, email string) (*models.UserAccount, error)
	GetByID(ctx context.Context, local localstore.Local, userID string) (*models.UserAccount, error)
	Create(ctx context.Context, local localstore.Local, account *models.UserAccount) error
	UpdateAvatar(ctx context.Context, local localstore.Local, userID, avatar string) error
}

type SessionRepository interface {
	Get(ctx context.Context, local localstore.Local) (*models.Session, error)
	Save(ctx context.Context, local localstore.Local, session *models.Session) error
	Clear(ctx context.Context, local localstore.Local) error
}

type StoryRepository interface {
	List(ctx context.Context, local localstore.Local, collection string) ([]models.StoryRecord, error)
	GetByID(ctx context.Context, local localstore.Local, collection string, id int64) (*models.StoryRecord, error)
	Insert(ctx context.Context, local localstore.Local, collection string, record *models.StoryRecord) error
	Replace(ctx context.Context, local localstore.Local, collection string, record *models.StoryRecord) error
	Delete(ctx context.Context, local localstore.Local, collection string, id int64) error
	MaxID(ctx context.Context, local localstore.Local) (int64, error)
}

type CommentRepository interface {
	ListByStory(ctx context.Context, local localstore.Local, storyID int64) ([]models.Comment, error)
	Create(ctx context.Context, local localstore.Local, comment *models.Comment) error
	DeleteByStory(ctx context.Context, local localstore.Local, storyID int64) error
}

type ReactionRepository interface {
	Toggle(ctx context.Context, local localstore.Local, relation, userID, target string) (bool, error)
	Targets(ctx context.Context, local localstore.Local, relation, userID string) ([]string, error)
	Count(ctx context.Context, local localstore.Local, relation, target string) (int, error)
	RemoveTarget(ctx context.Context, local localstore.Local, relation, target string) error
}

type PreferenceRepository interface {
	GetLanguage(ctx context.Context, local localstore.Local) (string, error)
	SetLanguage(ctx context.Context, local localstore.Local, lang string) error
}

type StatsRepository interface {
	Stats(ctx context.Context) (models.StorageStats, error)
}

type Repository struct {
	Stats      StatsRepository
	Account    AccountRepository
	Session    SessionRepository
	Story      StoryRepository
	Comment    CommentRepository
	Reaction   ReactionRepository
	Preference PreferenceRepository
}

func NewRepository(store localstore.Store, log logging.Logger) *Repository {
	docs := documents{log: log}

	return &Repository{
		Stats:      NewStatsRepository(store),
		Account:    NewAccountRepository(docs),
		Session:    NewSessionRepository(docs),
		Story:      NewStoryRepository(docs),
		Comment:    NewCommentRepository(docs),
		Reaction:   NewReactionRepository(docs),
		Preference: NewPreferenceRepository(),
	}
}
