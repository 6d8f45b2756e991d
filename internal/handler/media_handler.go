package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"hikayat/internal/models"
)

type UploadResponse struct {
	URL string `json:"url"`
}

// formFile reads a single multipart file no larger than the upload limit.
func (h *Handlers) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body", models.ErrTooLarge)
		}
		return nil, fmt.Errorf("%w: multipart form expected", models.ErrValidation)
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q is missing", models.ErrValidation, field)
	}
	return file, nil
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	file, err := h.formFile(w, r, "avatar")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer file.Close()

	session, err := h.MediaService.UploadAvatar(r.Context(), profile, file)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, SessionResponse{Authenticated: true, User: session}, http.StatusOK)
}

func (h *Handlers) UploadCover(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	file, err := h.formFile(w, r, "cover")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer file.Close()

	url, err := h.MediaService.UploadCover(r.Context(), profile, file)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, UploadResponse{URL: url}, http.StatusCreated)
}

// audioReadGrace lets the capture settle on its own duration limit before the
// connection read deadline fires.
const audioReadGrace = time.Second

// RecordAudio streams the request body into a capture session. The read deadline
// releases a Read blocked on a stalled client once the duration limit is over.
func (h *Handlers) RecordAudio(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	if limit := h.Cfg.Audio.MaxDuration; limit > 0 {
		err := http.NewResponseController(w).SetReadDeadline(time.Now().Add(limit + audioReadGrace))
		if err != nil {
			h.Log.Debug(r.Context(), "дедлайн чтения не поддерживается", "error", err)
		}
	}

	upload, err := h.MediaService.RecordAudio(r.Context(), profile, r.Body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, upload, http.StatusCreated)
}
