package handlers

import (
	"net/http"

	"hikayat/internal/models"
)

func (h *Handlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	var fields models.StoryFields
	if err := decodeJSON(r, &fields); err != nil {
		h.handleError(w, r, err)
		return
	}

	draft, err := h.StoryService.CreateDraft(r.Context(), profile, fields)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, draft, http.StatusCreated)
}

func (h *Handlers) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var fields models.StoryFields
	if err := decodeJSON(r, &fields); err != nil {
		h.handleError(w, r, err)
		return
	}

	draft, err := h.StoryService.UpdateDraft(r.Context(), profile, id, fields)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, draft, http.StatusOK)
}

func (h *Handlers) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.StoryService.DeleteDraft(r.Context(), profile, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "draft deleted"}, http.StatusOK)
}

func (h *Handlers) PublishDraft(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var fields models.StoryFields
	if err := decodeJSON(r, &fields); err != nil {
		h.handleError(w, r, err)
		return
	}

	story, err := h.StoryService.Publish(r.Context(), profile, id, fields)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, story, http.StatusCreated)
}

func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	var fields models.StoryFields
	if err := decodeJSON(r, &fields); err != nil {
		h.handleError(w, r, err)
		return
	}

	story, err := h.StoryService.CreateStory(r.Context(), profile, fields)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, story, http.StatusCreated)
}

func (h *Handlers) DeleteStory(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.StoryService.DeleteStory(r.Context(), profile, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "story deleted"}, http.StatusOK)
}
