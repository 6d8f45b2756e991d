package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hikayat/internal/localstore"
	"hikayat/internal/models"
	"hikayat/internal/notice"
)

// Page is the JSON model returned for every page route.
type Page struct {
	Page     string                    `json:"page"`
	Session  *models.Session           `json:"session"`
	Language models.LanguagePreference `json:"language"`
	Warnings []string                  `json:"warnings,omitempty"`
	Data     any                       `json:"data,omitempty"`
}

type WritePage struct {
	Categories []string            `json:"categories"`
	Draft      *models.StoryRecord `json:"draft"`
}

type ProfilePage struct {
	Stories int `json:"stories"`
	Drafts  int `json:"drafts"`
}

type StoriesPage struct {
	Stories    []models.StoryRecord `json:"stories"`
	Categories []string             `json:"categories"`
	Category   string               `json:"category,omitempty"`
	Query      string               `json:"query,omitempty"`
}

type StoryPage struct {
	Story    *models.StoryRecord `json:"story"`
	Author   *models.Writer      `json:"author,omitempty"`
	Comments []models.Comment    `json:"comments"`
	Liked    bool                `json:"liked"`
	Likes    int                 `json:"likes"`
}

type WriterPage struct {
	Writer  *models.Writer       `json:"writer"`
	Stories []models.StoryRecord `json:"stories"`
}

type LoginPage struct {
	Redirect string `json:"redirect"`
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, profile localstore.Profile, name string, data any) {
	session, _, err := h.AuthService.CurrentSession(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	lang, err := h.PreferenceService.Language(r.Context(), profile, r.Header.Get("Accept-Language"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, Page{
		Page:     name,
		Session:  session,
		Language: lang,
		Warnings: notice.From(r.Context()),
		Data:     data,
	}, http.StatusOK)
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	h.renderPage(w, r, profile, "login", LoginPage{Redirect: SafeRedirect(r.URL.Query().Get("redirect"))})
}

func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	h.renderPage(w, r, profile, "register", nil)
}

// StaticPage serves the informational pages that carry no data.
func (h *Handlers) StaticPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := h.profile(w, r)
		if !ok {
			return
		}
		h.renderPage(w, r, profile, name, nil)
	}
}

// WritePage loads the draft named by ?draft=id. An unknown draft opens an empty editor.
func (h *Handlers) WritePage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	page := WritePage{Categories: models.Categories}

	if raw := r.URL.Query().Get("draft"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			draft, err := h.StoryService.GetDraft(r.Context(), profile, id)
			switch {
			case err == nil:
				page.Draft = draft
			case errors.Is(err, models.ErrNotFound):
			default:
				h.handleError(w, r, err)
				return
			}
		}
	}

	h.renderPage(w, r, profile, "write", page)
}

func (h *Handlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	stories, err := h.StoryService.ListMyStories(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	drafts, err := h.StoryService.ListDrafts(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, profile, "profile", ProfilePage{Stories: len(stories), Drafts: len(drafts)})
}

func (h *Handlers) DraftsPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	drafts, err := h.StoryService.ListDrafts(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, profile, "drafts", StoriesPage{Stories: drafts, Categories: models.Categories})
}

func (h *Handlers) StoriesPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	filter := models.StoryFilter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}

	stories, err := h.StoryService.ListStories(r.Context(), profile, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, profile, "stories", StoriesPage{
		Stories:    stories,
		Categories: models.Categories,
		Category:   filter.Category,
		Query:      filter.Query,
	})
}

func (h *Handlers) MyStoriesPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	stories, err := h.StoryService.ListMyStories(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, profile, "my-stories", StoriesPage{Stories: stories, Categories: models.Categories})
}

func (h *Handlers) StoryPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	story, err := h.StoryService.GetStory(r.Context(), profile, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	comments, err := h.CommunityService.ListComments(r.Context(), profile, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	liked, likes, err := h.CommunityService.LikeState(r.Context(), profile, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	page := StoryPage{Story: story, Comments: comments, Liked: liked, Likes: likes}
	if story.OwnerID != "" {
		author, _, err := h.CommunityService.GetWriter(r.Context(), profile, story.OwnerID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			h.handleError(w, r, err)
			return
		}
		page.Author = author
	}

	h.renderPage(w, r, profile, "story", page)
}

func (h *Handlers) WritersPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	writers, err := h.CommunityService.ListWriters(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, profile, "writers", writers)
}

func (h *Handlers) WriterPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	writer, stories, err := h.CommunityService.GetWriter(r.Context(), profile, mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, profile, "writer", WriterPage{Writer: writer, Stories: stories})
}
