package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/repository"
)

// CommunityService covers comments, likes, follows and the writer pages.
type CommunityService interface {
	AddComment(ctx context.Context, profile localstore.Profile, storyID int64, content string) (*models.Comment, error)
	ListComments(ctx context.Context, profile localstore.Profile, storyID int64) ([]models.Comment, error)
	ToggleLike(ctx context.Context, profile localstore.Profile, storyID int64) (bool, int, error)
	LikeState(ctx context.Context, profile localstore.Profile, storyID int64) (bool, int, error)
	ToggleFollow(ctx context.Context, profile localstore.Profile, writerID string) (bool, int, error)
	ListWriters(ctx context.Context, profile localstore.Profile) ([]models.Writer, error)
	GetWriter(ctx context.Context, profile localstore.Profile, writerID string) (*models.Writer, []models.StoryRecord, error)
}

type communityService struct {
	accounts  repository.AccountRepository
	sessions  repository.SessionRepository
	stories   repository.StoryRepository
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
	validate  *validator.Validate
	log       logging.Logger
	now       func() time.Time
}

func NewCommunityService(rep *repository.Repository, validate *validator.Validate, log logging.Logger) CommunityService {
	return &communityService{
		accounts:  rep.Account,
		sessions:  rep.Session,
		stories:   rep.Story,
		comments:  rep.Comment,
		reactions: rep.Reaction,
		validate:  validate,
		log:       log,
		now:       time.Now,
	}
}

func storyKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *communityService) AddComment(ctx context.Context, profile localstore.Profile, storyID int64, content string) (*models.Comment, error) {
	if err := s.validate.Struct(models.CommentRequest{Content: content}); err != nil {
		return nil, validationError(err)
	}

	var comment *models.Comment

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}

		if _, err := s.stories.GetByID(ctx, tx, models.KeyStories, storyID); err != nil {
			return err
		}

		comment = &models.Comment{
			CommentID:  uuid.New().String(),
			StoryID:    storyID,
			UserID:     session.UserID,
			UserName:   session.Name,
			UserAvatar: session.Avatar,
			Content:    strings.TrimSpace(content),
			CreatedAt:  s.now().UTC(),
		}
		return s.comments.Create(ctx, tx, comment)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при добавлении комментария: %w", err)
	}

	return comment, nil
}

func (s *communityService) ListComments(ctx context.Context, profile localstore.Profile, storyID int64) ([]models.Comment, error) {
	return s.comments.ListByStory(ctx, profile, storyID)
}

func (s *communityService) ToggleLike(ctx context.Context, profile localstore.Profile, storyID int64) (bool, int, error) {
	var (
		liked bool
		count int
	)

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}

		if _, err := s.stories.GetByID(ctx, tx, models.KeyStories, storyID); err != nil {
			return err
		}

		liked, err = s.reactions.Toggle(ctx, tx, models.KeyLikes, session.UserID, storyKey(storyID))
		if err != nil {
			return err
		}

		count, err = s.reactions.Count(ctx, tx, models.KeyLikes, storyKey(storyID))
		return err
	})
	if err != nil {
		return false, 0, fmt.Errorf("ошибка при обновлении отметки: %w", err)
	}

	return liked, count, nil
}

// LikeState reports whether the current user liked the story; anonymous users never have.
func (s *communityService) LikeState(ctx context.Context, profile localstore.Profile, storyID int64) (bool, int, error) {
	count, err := s.reactions.Count(ctx, profile, models.KeyLikes, storyKey(storyID))
	if err != nil {
		return false, 0, err
	}

	session, err := s.sessions.Get(ctx, profile)
	if err != nil || session == nil {
		return false, count, err
	}

	liked, err := s.reactions.Targets(ctx, profile, models.KeyLikes, session.UserID)
	if err != nil {
		return false, count, err
	}

	return slices.Contains(liked, storyKey(storyID)), count, nil
}

func (s *communityService) ToggleFollow(ctx context.Context, profile localstore.Profile, writerID string) (bool, int, error) {
	var (
		following bool
		followers int
	)

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}
		if session.UserID == writerID {
			return fmt.Errorf("%w: cannot follow yourself", models.ErrValidation)
		}

		if _, err := s.accounts.GetByID(ctx, tx, writerID); err != nil {
			return err
		}

		following, err = s.reactions.Toggle(ctx, tx, models.KeyFollows, session.UserID, writerID)
		if err != nil {
			return err
		}

		followers, err = s.reactions.Count(ctx, tx, models.KeyFollows, writerID)
		return err
	})
	if err != nil {
		return false, 0, fmt.Errorf("ошибка при обновлении подписки: %w", err)
	}

	return following, followers, nil
}

func (s *communityService) writer(ctx context.Context, local localstore.Local, account models.UserAccount, stories []models.StoryRecord) (models.Writer, error) {
	writer := models.Writer{
		UserID:       account.UserID,
		Name:         account.Name,
		Avatar:       account.Avatar,
		RegisteredAt: account.RegisteredAt,
		Categories:   []string{},
	}

	for _, story := range stories {
		if story.OwnerID != account.UserID {
			continue
		}
		writer.Stories++
		if story.Category != "" && !slices.Contains(writer.Categories, story.Category) {
			writer.Categories = append(writer.Categories, story.Category)
		}
	}

	followers, err := s.reactions.Count(ctx, local, models.KeyFollows, account.UserID)
	if err != nil {
		return writer, err
	}
	following, err := s.reactions.Targets(ctx, local, models.KeyFollows, account.UserID)
	if err != nil {
		return writer, err
	}

	writer.Followers = followers
	writer.Following = len(following)
	return writer, nil
}

// ListWriters returns every registered account, newest first.
func (s *communityService) ListWriters(ctx context.Context, profile localstore.Profile) ([]models.Writer, error) {
	accounts, err := s.accounts.List(ctx, profile)
	if err != nil {
		return nil, err
	}
	stories, err := s.stories.List(ctx, profile, models.KeyStories)
	if err != nil {
		return nil, err
	}

	writers := make([]models.Writer, 0, len(accounts))
	for _, account := range accounts {
		writer, err := s.writer(ctx, profile, account, stories)
		if err != nil {
			return nil, fmt.Errorf("ошибка при получении писателей: %w", err)
		}
		writers = append(writers, writer)
	}

	slices.SortStableFunc(writers, func(a, b models.Writer) int {
		return b.RegisteredAt.Compare(a.RegisteredAt)
	})
	return writers, nil
}

func (s *communityService) GetWriter(ctx context.Context, profile localstore.Profile, writerID string) (*models.Writer, []models.StoryRecord, error) {
	account, err := s.accounts.GetByID(ctx, profile, writerID)
	if err != nil {
		return nil, nil, err
	}
	stories, err := s.stories.List(ctx, profile, models.KeyStories)
	if err != nil {
		return nil, nil, err
	}

	writer, err := s.writer(ctx, profile, *account, stories)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка при получении писателя: %w", err)
	}

	published := []models.StoryRecord{}
	for _, story := range stories {
		if story.OwnerID == writerID {
			published = append(published, story)
		}
	}
	sortNewestFirst(published)

	return &writer, published, nil
}
