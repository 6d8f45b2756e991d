package app

import (
	"net/http"

	"github.com/gorilla/mux"

	handlers "hikayat/internal/handler"
	"hikayat/internal/middleware"
)

// Router registers every page and API route behind the middleware chain.
func (a *Application) Router() http.Handler {
	h := a.Handlers
	auth := a.Services.Auth
	protected := func(f http.HandlerFunc) http.Handler {
		return middleware.RequireSession(auth)(f)
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)

	// api
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", h.Session).Methods(http.MethodGet)
	api.HandleFunc("/language", h.GetLanguage).Methods(http.MethodGet)
	api.HandleFunc("/language", h.SetLanguage).Methods(http.MethodPut)

	api.Handle("/profile/avatar", protected(h.UploadAvatar)).Methods(http.MethodPut)
	api.Handle("/drafts", protected(h.CreateDraft)).Methods(http.MethodPost)
	api.Handle("/drafts/{id:[0-9]+}", protected(h.UpdateDraft)).Methods(http.MethodPut)
	api.Handle("/drafts/{id:[0-9]+}", protected(h.DeleteDraft)).Methods(http.MethodDelete)
	api.Handle("/drafts/{id:[0-9]+}/publish", protected(h.PublishDraft)).Methods(http.MethodPost)
	api.Handle("/stories", protected(h.CreateStory)).Methods(http.MethodPost)
	api.Handle("/stories/{id:[0-9]+}", protected(h.DeleteStory)).Methods(http.MethodDelete)
	api.Handle("/stories/{id:[0-9]+}/comments", protected(h.AddComment)).Methods(http.MethodPost)
	api.Handle("/stories/{id:[0-9]+}/like", protected(h.ToggleLike)).Methods(http.MethodPost)
	api.Handle("/writers/{id}/follow", protected(h.ToggleFollow)).Methods(http.MethodPost)
	api.Handle("/media/cover", protected(h.UploadCover)).Methods(http.MethodPost)
	api.Handle("/media/audio", protected(h.RecordAudio)).Methods(http.MethodPost)

	// pages
	r.HandleFunc("/", h.StoriesPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/register", h.RegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/write", h.WritePage).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.ProfilePage).Methods(http.MethodGet)
	r.HandleFunc("/drafts", h.DraftsPage).Methods(http.MethodGet)
	r.HandleFunc("/stories", h.StoriesPage).Methods(http.MethodGet)
	r.HandleFunc("/stories/my", h.MyStoriesPage).Methods(http.MethodGet)
	r.HandleFunc("/stories/{id:[0-9]+}", h.StoryPage).Methods(http.MethodGet)
	r.HandleFunc("/writers", h.WritersPage).Methods(http.MethodGet)
	r.HandleFunc("/writers/{id}", h.WriterPage).Methods(http.MethodGet)
	for _, page := range []string{"about", "contact", "terms", "privacy"} {
		r.HandleFunc("/"+page, h.StaticPage(page)).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "not found", http.StatusNotFound)
	})

	return middleware.Chain(
		r,
		middleware.RouteGuard(auth),
		middleware.ProfileMiddleware(a.Store, a.Services.Tokens, a.Cfg, a.Log),
		middleware.NoticeMiddleware,
		middleware.CORSMiddleware(a.Cfg.CORSOrigins),
		middleware.LoggingMiddleware(a.Log),
		middleware.RequestIDMiddleware,
	)
}
