package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hikayat/internal/models"
)

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError - универсальная функция для отправки ошибок
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// WriteSuccess - функция для успешных ответов
func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredential), errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps internal details out of 5xx responses.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusConflict:
		return models.ErrDuplicateEmail.Error()
	case http.StatusNotFound:
		return models.ErrNotFound.Error()
	case http.StatusUnauthorized:
		if errors.Is(err, models.ErrInvalidCredential) {
			return models.ErrInvalidCredential.Error()
		}
		return models.ErrUnauthenticated.Error()
	case http.StatusForbidden:
		return models.ErrForbidden.Error()
	case http.StatusRequestEntityTooLarge:
		return models.ErrTooLarge.Error()
	case http.StatusUnsupportedMediaType:
		return models.ErrUnsupportedMedia.Error()
	case http.StatusServiceUnavailable:
		return models.ErrStorageUnavailable.Error()
	default:
		return "internal server error"
	}
}

func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(r.Context(), "ошибка обработки запроса", "path", r.URL.Path, "error", err)
	} else {
		h.Log.Debug(r.Context(), "запрос отклонён", "path", r.URL.Path, "status", status, "error", err)
	}

	WriteError(w, publicMessage(err, status), status)
}
