// Package response writes JSON responses.
//
// Successful responses carry the resource itself; failures use a small
// envelope:
//
//	{"status":404,"message":"Lunch not found"}
//	{"status":400,"message":"Validation failed","errors":{"title":"..."}}
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/orm"
	"github.com/reflaxess123/obedi/pkg/storage"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 without a body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Paginated sends a 200 with {data, meta}.
func Paginated(w http.ResponseWriter, data interface{}, meta orm.Meta) {
	Success(w, map[string]interface{}{
		"data": data,
		"meta": meta,
	})
}

// Error sends an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, envelope{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// FromError maps a service error to a status code. Domain errors keep their
// message; anything else is logged and reported as a 500.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperror.As(err); ok {
		Error(w, StatusFor(e.Kind), e.Message)
		return
	}

	log := logger.WithCtx(r.Context())

	var upErr *storage.UploadError
	if errors.As(err, &upErr) {
		log.Error("upload failed", "key", upErr.Key, "error", upErr.Err)
		Error(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}

// StatusFor returns the HTTP status for a domain error kind.
func StatusFor(k apperror.Kind) int {
	switch k {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
