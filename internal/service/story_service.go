package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/repository"
)

type StoryService interface {
	CreateDraft(ctx context.Context, profile localstore.Profile, fields models.StoryFields) (*models.StoryRecord, error)
	CreateStory(ctx context.Context, profile localstore.Profile, fields models.StoryFields) (*models.StoryRecord, error)
	UpdateDraft(ctx context.Context, profile localstore.Profile, id int64, fields models.StoryFields) (*models.StoryRecord, error)
	Publish(ctx context.Context, profile localstore.Profile, draftID int64, fields models.StoryFields) (*models.StoryRecord, error)
	DeleteDraft(ctx context.Context, profile localstore.Profile, id int64) error
	DeleteStory(ctx context.Context, profile localstore.Profile, id int64) error
	ListDrafts(ctx context.Context, profile localstore.Profile) ([]models.StoryRecord, error)
	ListMyStories(ctx context.Context, profile localstore.Profile) ([]models.StoryRecord, error)
	ListStories(ctx context.Context, profile localstore.Profile, filter models.StoryFilter) ([]models.StoryRecord, error)
	GetStory(ctx context.Context, profile localstore.Profile, id int64) (*models.StoryRecord, error)
	GetDraft(ctx context.Context, profile localstore.Profile, id int64) (*models.StoryRecord, error)
}

type storyService struct {
	stories  repository.StoryRepository
	sessions repository.SessionRepository
	comments repository.CommentRepository
	likes    repository.ReactionRepository
	validate *validator.Validate
	ids      *idGenerator
	log      logging.Logger
	now      func() time.Time
}

func NewStoryService(rep *repository.Repository, validate *validator.Validate, log logging.Logger) StoryService {
	return &storyService{
		stories:  rep.Story,
		sessions: rep.Session,
		comments: rep.Comment,
		likes:    rep.Reaction,
		validate: validate,
		ids:      newIDGenerator(),
		log:      log,
		now:      time.Now,
	}
}

// owns reports whether session may change record. Records stored without an
// owner predate ownership and stay editable by any logged-in user.
func owns(session *models.Session, record *models.StoryRecord) bool {
	return record.OwnerID == "" || record.OwnerID == session.UserID
}

func (s *storyService) checkDraft(fields models.StoryFields) error {
	if err := s.validate.Struct(models.DraftRules{Title: fields.Title}); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *storyService) checkStory(fields models.StoryFields) error {
	err := s.validate.Struct(models.StoryRules{
		Title:    fields.Title,
		Content:  fields.Content,
		Category: fields.Category,
	})
	if err != nil {
		return validationError(err)
	}
	return nil
}

func (s *storyService) newRecord(session *models.Session, id int64, fields models.StoryFields, draft bool) *models.StoryRecord {
	return &models.StoryRecord{
		ID:         id,
		OwnerID:    session.UserID,
		Title:      fields.Title,
		Content:    fields.Content,
		Category:   fields.Category,
		CoverImage: fields.CoverImage,
		AudioURL:   fields.AudioURL,
		CreatedAt:  s.now().UTC(),
		IsDraft:    draft,
	}
}

// insert assigns the next id inside the profile transaction and appends the record.
func (s *storyService) insert(ctx context.Context, profile localstore.Profile, collection string, fields models.StoryFields) (*models.StoryRecord, error) {
	var record *models.StoryRecord

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}

		maxID, err := s.stories.MaxID(ctx, tx)
		if err != nil {
			return err
		}

		record = s.newRecord(session, s.ids.Next(maxID), fields, collection == models.KeyDrafts)
		return s.stories.Insert(ctx, tx, collection, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (s *storyService) CreateDraft(ctx context.Context, profile localstore.Profile, fields models.StoryFields) (*models.StoryRecord, error) {
	if err := s.checkDraft(fields); err != nil {
		return nil, err
	}

	record, err := s.insert(ctx, profile, models.KeyDrafts, fields)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании черновика: %w", err)
	}

	s.log.Info(ctx, "черновик сохранён", "profile", profile.ID(), "draft", record.ID)
	return record, nil
}

func (s *storyService) CreateStory(ctx context.Context, profile localstore.Profile, fields models.StoryFields) (*models.StoryRecord, error) {
	if err := s.checkStory(fields); err != nil {
		return nil, err
	}

	record, err := s.insert(ctx, profile, models.KeyStories, fields)
	if err != nil {
		return nil, fmt.Errorf("ошибка при публикации истории: %w", err)
	}

	s.log.Info(ctx, "история опубликована", "profile", profile.ID(), "story", record.ID)
	return record, nil
}

// UpdateDraft overwrites the editable fields, keeping id, owner and creation time.
func (s *storyService) UpdateDraft(ctx context.Context, profile localstore.Profile, id int64, fields models.StoryFields) (*models.StoryRecord, error) {
	if err := s.checkDraft(fields); err != nil {
		return nil, err
	}

	var updated *models.StoryRecord

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}

		draft, err := s.stories.GetByID(ctx, tx, models.KeyDrafts, id)
		if err != nil {
			return err
		}
		if !owns(session, draft) {
			return models.ErrForbidden
		}

		draft.Title = fields.Title
		draft.Content = fields.Content
		draft.Category = fields.Category
		draft.CoverImage = fields.CoverImage
		draft.AudioURL = fields.AudioURL
		draft.IsDraft = true

		updated = draft
		return s.stories.Replace(ctx, tx, models.KeyDrafts, draft)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при обновлении черновика %d: %w", id, err)
	}

	return updated, nil
}

// Publish moves a draft into the published stories in one transaction.
func (s *storyService) Publish(ctx context.Context, profile localstore.Profile, draftID int64, fields models.StoryFields) (*models.StoryRecord, error) {
	if err := s.checkStory(fields); err != nil {
		return nil, err
	}

	var story *models.StoryRecord

	err := profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}

		draft, err := s.stories.GetByID(ctx, tx, models.KeyDrafts, draftID)
		if err != nil {
			return err
		}
		if !owns(session, draft) {
			return models.ErrForbidden
		}

		maxID, err := s.stories.MaxID(ctx, tx)
		if err != nil {
			return err
		}

		story = s.newRecord(session, s.ids.Next(maxID), fields, false)
		if err := s.stories.Insert(ctx, tx, models.KeyStories, story); err != nil {
			return err
		}

		return s.stories.Delete(ctx, tx, models.KeyDrafts, draftID)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при публикации черновика %d: %w", draftID, err)
	}

	s.log.Info(ctx, "черновик опубликован", "profile", profile.ID(), "draft", draftID, "story", story.ID)
	return story, nil
}

// remove deletes id from collection. An absent id is not an error.
func (s *storyService) remove(ctx context.Context, profile localstore.Profile, collection string, id int64) error {
	return profile.Atomic(ctx, func(tx localstore.Local) error {
		session, err := requireSession(ctx, s.sessions, tx)
		if err != nil {
			return err
		}

		record, err := s.stories.GetByID(ctx, tx, collection, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !owns(session, record) {
			return models.ErrForbidden
		}

		if err := s.stories.Delete(ctx, tx, collection, id); err != nil {
			return err
		}

		if collection == models.KeyStories {
			if err := s.comments.DeleteByStory(ctx, tx, id); err != nil {
				return err
			}
			return s.likes.RemoveTarget(ctx, tx, models.KeyLikes, storyKey(id))
		}
		return nil
	})
}

func (s *storyService) DeleteDraft(ctx context.Context, profile localstore.Profile, id int64) error {
	if err := s.remove(ctx, profile, models.KeyDrafts, id); err != nil {
		return fmt.Errorf("ошибка при удалении черновика %d: %w", id, err)
	}
	return nil
}

func (s *storyService) DeleteStory(ctx context.Context, profile localstore.Profile, id int64) error {
	if err := s.remove(ctx, profile, models.KeyStories, id); err != nil {
		return fmt.Errorf("ошибка при удалении истории %d: %w", id, err)
	}
	return nil
}

func (s *storyService) listOwned(ctx context.Context, profile localstore.Profile, collection string) ([]models.StoryRecord, error) {
	session, err := requireSession(ctx, s.sessions, profile)
	if err != nil {
		return nil, err
	}

	records, err := s.stories.List(ctx, profile, collection)
	if err != nil {
		return nil, err
	}

	owned := make([]models.StoryRecord, 0, len(records))
	for i := range records {
		if owns(session, &records[i]) {
			owned = append(owned, records[i])
		}
	}

	sortNewestFirst(owned)
	return owned, nil
}

func (s *storyService) ListDrafts(ctx context.Context, profile localstore.Profile) ([]models.StoryRecord, error) {
	return s.listOwned(ctx, profile, models.KeyDrafts)
}

func (s *storyService) ListMyStories(ctx context.Context, profile localstore.Profile) ([]models.StoryRecord, error) {
	return s.listOwned(ctx, profile, models.KeyStories)
}

// ListStories returns every published story matching filter, newest first.
// Query matches title or content without regard to case.
func (s *storyService) ListStories(ctx context.Context, profile localstore.Profile, filter models.StoryFilter) ([]models.StoryRecord, error) {
	records, err := s.stories.List(ctx, profile, models.KeyStories)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(filter.Query))

	result := make([]models.StoryRecord, 0, len(records))
	for _, record := range records {
		if filter.Category != "" && filter.Category != "all" && record.Category != filter.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(record.Title), query) &&
			!strings.Contains(fold.String(record.Content), query) {
			continue
		}
		result = append(result, record)
	}

	sortNewestFirst(result)
	return result, nil
}

func (s *storyService) GetStory(ctx context.Context, profile localstore.Profile, id int64) (*models.StoryRecord, error) {
	return s.stories.GetByID(ctx, profile, models.KeyStories, id)
}

// GetDraft is visible to the owner only.
func (s *storyService) GetDraft(ctx context.Context, profile localstore.Profile, id int64) (*models.StoryRecord, error) {
	session, err := requireSession(ctx, s.sessions, profile)
	if err != nil {
		return nil, err
	}

	draft, err := s.stories.GetByID(ctx, profile, models.KeyDrafts, id)
	if err != nil {
		return nil, err
	}
	if !owns(session, draft) {
		return nil, models.ErrForbidden
	}

	return draft, nil
}

func sortNewestFirst(records []models.StoryRecord) {
	slices.SortStableFunc(records, func(a, b models.StoryRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
