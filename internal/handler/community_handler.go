package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hikayat/internal/models"
)

type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type FollowResponse struct {
	Following bool `json:"following"`
	Followers int  `json:"followers"`
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	comment, err := h.CommunityService.AddComment(r.Context(), profile, id, req.Content)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, comment, http.StatusCreated)
}

func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	liked, likes, err := h.CommunityService.ToggleLike(r.Context(), profile, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, LikeResponse{Liked: liked, Likes: likes}, http.StatusOK)
}

func (h *Handlers) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	following, followers, err := h.CommunityService.ToggleFollow(r.Context(), profile, mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, FollowResponse{Following: following, Followers: followers}, http.StatusOK)
}
