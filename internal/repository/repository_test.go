package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/notice"
)

func setupRepository(t *testing.T) (*Repository, localstore.Profile) {
	t.Helper()
	store := localstore.NewMemoryStore()
	return NewRepository(store, logging.Nop()), store.Profile("profile-1")
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	account := &models.UserAccount{
		UserID:       "u1",
		Name:         "Sara",
		Email:        "sara@example.com",
		PasswordHash: "hash",
		RegisteredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Пустой список без данных", func(t *testing.T) {
		accounts, err := repo.Account.List(ctx, profile)
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})

	t.Run("Успешное создание пользователя", func(t *testing.T) {
		require.NoError(t, repo.Account.Create(ctx, profile, account))

		found, err := repo.Account.GetByEmail(ctx, profile, "sara@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", found.UserID)
	})

	t.Run("Ошибка при дублировании email", func(t *testing.T) {
		dup := *account
		dup.UserID = "u2"
		err := repo.Account.Create(ctx, profile, &dup)
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})

	t.Run("Email сравнивается точно", func(t *testing.T) {
		_, err := repo.Account.GetByEmail(ctx, profile, "Sara@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Обновление аватара", func(t *testing.T) {
		require.NoError(t, repo.Account.UpdateAvatar(ctx, profile, "u1", "/a.png"))

		found, err := repo.Account.GetByID(ctx, profile, "u1")
		require.NoError(t, err)
		assert.Equal(t, "/a.png", found.Avatar)

		assert.ErrorIs(t, repo.Account.UpdateAvatar(ctx, profile, "missing", "/b.png"), models.ErrNotFound)
	})
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	session, err := repo.Session.Get(ctx, profile)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, repo.Session.Save(ctx, profile, &models.Session{UserID: "u1", Email: "a@b.c", Name: "A"}))

	session, err = repo.Session.Get(ctx, profile)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "u1", session.UserID)

	raw, _, _ := profile.GetItem(ctx, models.KeySession)
	assert.NotContains(t, string(raw), "password")

	require.NoError(t, repo.Session.Clear(ctx, profile))
	require.NoError(t, repo.Session.Clear(ctx, profile))

	session, err = repo.Session.Get(ctx, profile)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionRepository_WithoutUserID(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	require.NoError(t, profile.SetItem(ctx, models.KeySession, []byte(`{"name":"Sara","email":"s@x"}`)))

	t.Run("Нет аккаунта с таким email", func(t *testing.T) {
		session, err := repo.Session.Get(ctx, profile)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("Аккаунт найден по email", func(t *testing.T) {
		require.NoError(t, repo.Account.Create(ctx, profile, &models.UserAccount{UserID: "u7", Name: "Sara", Email: "s@x"}))

		session, err := repo.Session.Get(ctx, profile)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "u7", session.UserID)
	})
}

func TestStoryRepository(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	draft := &models.StoryRecord{ID: 10, OwnerID: "u1", Title: "Draft", IsDraft: true}
	story := &models.StoryRecord{ID: 20, OwnerID: "u1", Title: "Story", Category: "poetry"}

	require.NoError(t, repo.Story.Insert(ctx, profile, models.KeyDrafts, draft))
	require.NoError(t, repo.Story.Insert(ctx, profile, models.KeyStories, story))

	t.Run("Максимальный id по обеим коллекциям", func(t *testing.T) {
		maxID, err := repo.Story.MaxID(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, int64(20), maxID)
	})

	t.Run("Замена черновика", func(t *testing.T) {
		updated := *draft
		updated.Title = "New title"
		require.NoError(t, repo.Story.Replace(ctx, profile, models.KeyDrafts, &updated))

		found, err := repo.Story.GetByID(ctx, profile, models.KeyDrafts, 10)
		require.NoError(t, err)
		assert.Equal(t, "New title", found.Title)
	})

	t.Run("Замена несуществующей записи", func(t *testing.T) {
		err := repo.Story.Replace(ctx, profile, models.KeyDrafts, &models.StoryRecord{ID: 99})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Удаление идемпотентно", func(t *testing.T) {
		require.NoError(t, repo.Story.Delete(ctx, profile, models.KeyStories, 999))
		stories, err := repo.Story.List(ctx, profile, models.KeyStories)
		require.NoError(t, err)
		assert.Len(t, stories, 1)

		require.NoError(t, repo.Story.Delete(ctx, profile, models.KeyStories, 20))
		stories, err = repo.Story.List(ctx, profile, models.KeyStories)
		require.NoError(t, err)
		assert.Empty(t, stories)
	})

	t.Run("Неизвестная коллекция", func(t *testing.T) {
		_, err := repo.Story.List(ctx, profile, "posts")
		assert.Error(t, err)
	})
}

func TestStoryRepository_CorruptCollectionIsReset(t *testing.T) {
	repo, profile := setupRepository(t)
	ctx, notes := notice.With(context.Background())

	require.NoError(t, profile.SetItem(ctx, models.KeyStories, []byte(`{not json`)))

	stories, err := repo.Story.List(ctx, profile, models.KeyStories)
	require.NoError(t, err)
	assert.Empty(t, stories)

	_, ok, err := profile.GetItem(ctx, models.KeyStories)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt value is removed")

	require.Len(t, notes.Messages(), 1)
	assert.Contains(t, notes.Messages()[0], models.ErrStorageCorrupt.Error())
	assert.Contains(t, notes.Messages()[0], models.KeyStories)
}

func TestReadDocument_ReportsResetAfterCommit(t *testing.T) {
	docs := documents{log: logging.Nop()}

	t.Run("Откат транзакции", func(t *testing.T) {
		ctx, notes := notice.With(context.Background())
		profile := localstore.NewMemoryStore().Profile("p")
		require.NoError(t, profile.SetItem(ctx, models.KeyDrafts, []byte(`[`)))

		boom := errors.New("boom")
		err := profile.Atomic(ctx, func(tx localstore.Local) error {
			if _, err := readDocument[[]models.StoryRecord](ctx, docs, tx, models.KeyDrafts); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		assert.Empty(t, notes.Messages())
		_, ok, err := profile.GetItem(ctx, models.KeyDrafts)
		require.NoError(t, err)
		assert.True(t, ok, "rolled back reset leaves the value in place")
	})

	t.Run("Фиксация транзакции", func(t *testing.T) {
		ctx, notes := notice.With(context.Background())
		profile := localstore.NewMemoryStore().Profile("p")
		require.NoError(t, profile.SetItem(ctx, models.KeyDrafts, []byte(`[`)))

		err := profile.Atomic(ctx, func(tx localstore.Local) error {
			_, err := readDocument[[]models.StoryRecord](ctx, docs, tx, models.KeyDrafts)
			if err == nil {
				assert.Empty(t, notes.Messages(), "nothing reported before commit")
			}
			return err
		})
		require.NoError(t, err)

		assert.Len(t, notes.Messages(), 1)
	})
}

type failingLocal struct {
	localstore.Local
}

func (f failingLocal) RemoveItem(ctx context.Context, key string) error {
	return errors.New("disk full")
}

func TestReadDocument_ResetFailure(t *testing.T) {
	ctx := context.Background()
	profile := localstore.NewMemoryStore().Profile("p")
	require.NoError(t, profile.SetItem(ctx, models.KeyDrafts, []byte(`[`)))

	_, err := readDocument[[]models.StoryRecord](ctx, documents{log: logging.Nop()}, failingLocal{profile}, models.KeyDrafts)
	assert.ErrorIs(t, err, models.ErrStorageCorrupt)
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	require.NoError(t, repo.Comment.Create(ctx, profile, &models.Comment{CommentID: "c1", StoryID: 1, Content: "first"}))
	require.NoError(t, repo.Comment.Create(ctx, profile, &models.Comment{CommentID: "c2", StoryID: 2, Content: "other"}))
	require.NoError(t, repo.Comment.Create(ctx, profile, &models.Comment{CommentID: "c3", StoryID: 1, Content: "second"}))

	comments, err := repo.Comment.ListByStory(ctx, profile, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c3", comments[0].CommentID, "newest first")

	require.NoError(t, repo.Comment.DeleteByStory(ctx, profile, 1))

	comments, err = repo.Comment.ListByStory(ctx, profile, 1)
	require.NoError(t, err)
	assert.Empty(t, comments)

	comments, err = repo.Comment.ListByStory(ctx, profile, 2)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestReactionRepository(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	active, err := repo.Reaction.Toggle(ctx, profile, models.KeyLikes, "u1", "7")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = repo.Reaction.Toggle(ctx, profile, models.KeyLikes, "u2", "7")
	require.NoError(t, err)

	count, err := repo.Reaction.Count(ctx, profile, models.KeyLikes, "7")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	active, err = repo.Reaction.Toggle(ctx, profile, models.KeyLikes, "u1", "7")
	require.NoError(t, err)
	assert.False(t, active)

	targets, err := repo.Reaction.Targets(ctx, profile, models.KeyLikes, "u1")
	require.NoError(t, err)
	assert.Empty(t, targets)

	require.NoError(t, repo.Reaction.RemoveTarget(ctx, profile, models.KeyLikes, "7"))
	count, err = repo.Reaction.Count(ctx, profile, models.KeyLikes, "7")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.Reaction.Toggle(ctx, profile, "bookmarks", "u1", "7")
	assert.Error(t, err)
}

func TestPreferenceRepository(t *testing.T) {
	ctx := context.Background()
	repo, profile := setupRepository(t)

	lang, err := repo.Preference.GetLanguage(ctx, profile)
	require.NoError(t, err)
	assert.Empty(t, lang)

	require.NoError(t, repo.Preference.SetLanguage(ctx, profile, models.LanguageEnglish))

	raw, _, _ := profile.GetItem(ctx, models.KeyLanguage)
	assert.Equal(t, "en", string(raw))

	lang, err = repo.Preference.GetLanguage(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}

func TestStatsRepository(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	repo := NewRepository(store, logging.Nop())

	require.NoError(t, store.Profile("a").SetItem(ctx, "user", []byte(`{}`)))
	require.NoError(t, store.Profile("b").SetItem(ctx, "users", []byte(`[]`)))
	require.NoError(t, store.Profile("b").SetItem(ctx, "drafts", []byte(`[]`)))

	stats, err := repo.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StorageStats{Profiles: 2, Items: 3}, stats)
}
