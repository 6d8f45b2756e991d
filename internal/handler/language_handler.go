package handlers

import (
	"net/http"

	"hikayat/internal/models"
)

func (h *Handlers) GetLanguage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	pref, err := h.PreferenceService.Language(r.Context(), profile, r.Header.Get("Accept-Language"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, pref, http.StatusOK)
}

func (h *Handlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	var req models.LanguageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "language must be ar or en", http.StatusBadRequest)
		return
	}

	pref, err := h.PreferenceService.SetLanguage(r.Context(), profile, req.Language)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, pref, http.StatusOK)
}
