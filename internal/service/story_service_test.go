package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikayat/internal/models"
	"hikayat/internal/notice"
)

func storyFields(title string) models.StoryFields {
	return models.StoryFields{Title: title, Content: "Once upon a time", Category: "fiction"}
}

func TestIDGenerator(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := &idGenerator{now: func() time.Time { return fixed }}

	first := g.Next(0)
	second := g.Next(0)
	assert.Equal(t, int64(1_700_000_000_000), first)
	assert.Equal(t, first+1, second, "same millisecond never collides")

	assert.Equal(t, int64(1_800_000_000_001), g.Next(1_800_000_000_000))
}

func TestIDGenerator_Concurrent(t *testing.T) {
	g := newIDGenerator()
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.Next(0), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}

func TestStoryService_RequiresSession(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	_, err := env.svc.Story.CreateDraft(ctx, env.profile, storyFields("t"))
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = env.svc.Story.CreateStory(ctx, env.profile, storyFields("t"))
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = env.svc.Story.ListDrafts(ctx, env.profile)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestStoryService_Drafts(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	session := env.login(t, "Sara", "sara@example.com")

	t.Run("Черновик требует заголовок", func(t *testing.T) {
		_, err := env.svc.Story.CreateDraft(ctx, env.profile, models.StoryFields{Title: "  "})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Черновик без категории и текста", func(t *testing.T) {
		draft, err := env.svc.Story.CreateDraft(ctx, env.profile, models.StoryFields{Title: "Idea"})
		require.NoError(t, err)
		assert.True(t, draft.IsDraft)
		assert.Equal(t, session.UserID, draft.OwnerID)
	})

	t.Run("Два черновика получают разные id", func(t *testing.T) {
		a, err := env.svc.Story.CreateDraft(ctx, env.profile, storyFields("A"))
		require.NoError(t, err)
		b, err := env.svc.Story.CreateDraft(ctx, env.profile, storyFields("B"))
		require.NoError(t, err)
		assert.Greater(t, b.ID, a.ID)
	})

	t.Run("Обновление сохраняет id и дату", func(t *testing.T) {
		draft, err := env.svc.Story.CreateDraft(ctx, env.profile, storyFields("Before"))
		require.NoError(t, err)

		cover := "/c.png"
		updated, err := env.svc.Story.UpdateDraft(ctx, env.profile, draft.ID, models.StoryFields{Title: "After", CoverImage: &cover})
		require.NoError(t, err)
		assert.Equal(t, draft.ID, updated.ID)
		assert.Equal(t, draft.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "After", updated.Title)
		assert.Empty(t, updated.Content, "full overwrite")
		require.NotNil(t, updated.CoverImage)
		assert.Equal(t, "/c.png", *updated.CoverImage)
	})

	t.Run("Обновление неизвестного черновика", func(t *testing.T) {
		_, err := env.svc.Story.UpdateDraft(ctx, env.profile, 42, storyFields("x"))
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Удаление идемпотентно", func(t *testing.T) {
		drafts, err := env.svc.Story.ListDrafts(ctx, env.profile)
		require.NoError(t, err)
		before := len(drafts)

		require.NoError(t, env.svc.Story.DeleteDraft(ctx, env.profile, 42))
		require.NoError(t, env.svc.Story.DeleteDraft(ctx, env.profile, drafts[0].ID))
		require.NoError(t, env.svc.Story.DeleteDraft(ctx, env.profile, drafts[0].ID))

		drafts, err = env.svc.Story.ListDrafts(ctx, env.profile)
		require.NoError(t, err)
		assert.Len(t, drafts, before-1)
	})
}

func TestStoryService_Publish(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.login(t, "Sara", "sara@example.com")

	draft, err := env.svc.Story.CreateDraft(ctx, env.profile, models.StoryFields{Title: "Draft"})
	require.NoError(t, err)

	t.Run("Публикация требует полную историю", func(t *testing.T) {
		_, err := env.svc.Story.Publish(ctx, env.profile, draft.ID, models.StoryFields{Title: "Draft", Category: "fiction"})
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = env.svc.Story.Publish(ctx, env.profile, draft.ID, models.StoryFields{Title: "Draft", Content: "x", Category: "cooking"})
		assert.ErrorIs(t, err, models.ErrValidation)

		drafts, err := env.svc.Story.ListDrafts(ctx, env.profile)
		require.NoError(t, err)
		assert.Len(t, drafts, 1, "failed publish keeps the draft")
	})

	t.Run("Успешная публикация", func(t *testing.T) {
		story, err := env.svc.Story.Publish(ctx, env.profile, draft.ID, storyFields("Final"))
		require.NoError(t, err)
		assert.False(t, story.IsDraft)
		assert.NotEqual(t, draft.ID, story.ID)

		drafts, err := env.svc.Story.ListDrafts(ctx, env.profile)
		require.NoError(t, err)
		assert.Empty(t, drafts)

		mine, err := env.svc.Story.ListMyStories(ctx, env.profile)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Final", mine[0].Title)
	})

	t.Run("Публикация отсутствующего черновика", func(t *testing.T) {
		_, err := env.svc.Story.Publish(ctx, env.profile, draft.ID, storyFields("Again"))
		assert.ErrorIs(t, err, models.ErrNotFound)

		stories, err := env.svc.Story.ListStories(ctx, env.profile, models.StoryFilter{})
		require.NoError(t, err)
		assert.Len(t, stories, 1)
	})
}

func TestStoryService_Ownership(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	env.login(t, "Sara", "sara@example.com")
	story, err := env.svc.Story.CreateStory(ctx, env.profile, storyFields("Sara's"))
	require.NoError(t, err)
	draft, err := env.svc.Story.CreateDraft(ctx, env.profile, storyFields("Sara's draft"))
	require.NoError(t, err)

	env.login(t, "Omar", "omar@example.com")

	assert.ErrorIs(t, env.svc.Story.DeleteStory(ctx, env.profile, story.ID), models.ErrForbidden)
	assert.ErrorIs(t, env.svc.Story.DeleteDraft(ctx, env.profile, draft.ID), models.ErrForbidden)

	_, err = env.svc.Story.UpdateDraft(ctx, env.profile, draft.ID, storyFields("hijack"))
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.svc.Story.Publish(ctx, env.profile, draft.ID, storyFields("hijack"))
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.svc.Story.GetDraft(ctx, env.profile, draft.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	drafts, err := env.svc.Story.ListDrafts(ctx, env.profile)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	got, err := env.svc.Story.GetStory(ctx, env.profile, story.ID)
	require.NoError(t, err, "published stories are public")
	assert.Equal(t, story.ID, got.ID)
}

func TestStoryService_ListStories(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.login(t, "Sara", "sara@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	env.svc.Story.(*storyService).now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Hour)
	}

	_, err := env.svc.Story.CreateStory(ctx, env.profile, models.StoryFields{Title: "Desert Rain", Content: "sand", Category: "poetry"})
	require.NoError(t, err)
	_, err = env.svc.Story.CreateStory(ctx, env.profile, models.StoryFields{Title: "The Case", Content: "a RAINY night", Category: "mystery"})
	require.NoError(t, err)
	_, err = env.svc.Story.CreateStory(ctx, env.profile, models.StoryFields{Title: "Stars", Content: "space", Category: "sci-fi"})
	require.NoError(t, err)

	all, err := env.svc.Story.ListStories(ctx, env.profile, models.StoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Stars", all[0].Title, "newest first")

	byCategory, err := env.svc.Story.ListStories(ctx, env.profile, models.StoryFilter{Category: "poetry"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Desert Rain", byCategory[0].Title)

	byQuery, err := env.svc.Story.ListStories(ctx, env.profile, models.StoryFilter{Query: "rain"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 2)
}

func TestStoryService_DeleteStoryRemovesComments(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.login(t, "Sara", "sara@example.com")

	story, err := env.svc.Story.CreateStory(ctx, env.profile, storyFields("Tale"))
	require.NoError(t, err)
	_, err = env.svc.Community.AddComment(ctx, env.profile, story.ID, "lovely")
	require.NoError(t, err)
	_, _, err = env.svc.Community.ToggleLike(ctx, env.profile, story.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Story.DeleteStory(ctx, env.profile, story.ID))

	comments, err := env.svc.Community.ListComments(ctx, env.profile, story.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, count, err := env.svc.Community.LikeState(ctx, env.profile, story.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = env.svc.Story.GetStory(ctx, env.profile, story.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStoryService_DeleteStoryIdempotent(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.login(t, "Sara", "sara@example.com")

	gone, err := env.svc.Story.CreateStory(ctx, env.profile, storyFields("Gone"))
	require.NoError(t, err)
	kept, err := env.svc.Story.CreateStory(ctx, env.profile, storyFields("Kept"))
	require.NoError(t, err)

	for _, id := range []int64{gone.ID, kept.ID} {
		_, err = env.svc.Community.AddComment(ctx, env.profile, id, "nice")
		require.NoError(t, err)
		_, _, err = env.svc.Community.ToggleLike(ctx, env.profile, id)
		require.NoError(t, err)
	}

	snapshot := func() map[string]string {
		out := map[string]string{}
		for _, key := range []string{models.KeyStories, models.KeyComments, models.KeyLikes} {
			raw, _, err := env.profile.GetItem(ctx, key)
			require.NoError(t, err)
			out[key] = string(raw)
		}
		return out
	}

	require.NoError(t, env.svc.Story.DeleteStory(ctx, env.profile, gone.ID))
	afterFirst := snapshot()

	require.NoError(t, env.svc.Story.DeleteStory(ctx, env.profile, gone.ID))
	assert.Equal(t, afterFirst, snapshot())

	stories, err := env.svc.Story.ListMyStories(ctx, env.profile)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, kept.ID, stories[0].ID)

	comments, err := env.svc.Community.ListComments(ctx, env.profile, kept.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	_, likes, err := env.svc.Community.LikeState(ctx, env.profile, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
}

func TestStoryService_CorruptCollectionWarns(t *testing.T) {
	env := setupService(t)
	env.login(t, "Sara", "sara@example.com")

	ctx, notes := notice.With(context.Background())
	require.NoError(t, env.profile.SetItem(ctx, models.KeyDrafts, []byte("not json")))

	draft, err := env.svc.Story.CreateDraft(ctx, env.profile, storyFields("Fresh"))
	require.NoError(t, err)

	drafts, err := env.svc.Story.ListDrafts(ctx, env.profile)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)
	assert.NotEmpty(t, notes.Messages())
}
