package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"hikayat/internal/config"
	"hikayat/internal/database"
	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/service"
)

type Handlers struct {
	AuthService       service.AuthService
	StoryService      service.StoryService
	CommunityService  service.CommunityService
	PreferenceService service.PreferenceService
	MediaService      service.MediaService
	StatsService      service.StatsService
	DB                database.MethodsDB
	Cfg               *config.Config
	Validate          *validator.Validate
	Log               logging.Logger
}

// NewHandlers wires the handlers. db may be nil when the in-memory store is used.
func NewHandlers(service *service.Service, db database.MethodsDB, config *config.Config, log logging.Logger) *Handlers {
	return &Handlers{
		AuthService:       service.Auth,
		StoryService:      service.Story,
		CommunityService:  service.Community,
		PreferenceService: service.Preference,
		MediaService:      service.Media,
		StatsService:      service.Stats,
		DB:                db,
		Cfg:               config,
		Validate:          models.NewValidator(),
		Log:               log,
	}
}

// profile returns the browser profile attached by the profile middleware.
func (h *Handlers) profile(w http.ResponseWriter, r *http.Request) (localstore.Profile, bool) {
	profile, ok := localstore.ProfileFrom(r.Context())
	if !ok {
		h.Log.Error(r.Context(), "профиль не найден в контексте", "path", r.URL.Path)
		WriteError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return profile, true
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body", models.ErrValidation)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", models.ErrValidation)
	}
	return id, nil
}
