// Package controllers holds the HTTP handlers of the API.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/bind"
	"github.com/reflaxess123/obedi/pkg/middleware"
	"github.com/reflaxess123/obedi/pkg/response"
)

var errBadID = apperror.BadRequest("Validation failed (numeric string is expected)")

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || n == 0 {
		return 0, errBadID
	}
	return uint(n), nil
}

// queryUint parses an optional positive integer query parameter.
func queryUint(r *http.Request, name string) (*uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperror.BadRequest(name + " must be an integer")
	}
	v := uint(n)
	return &v, nil
}

// queryInt parses an optional integer query parameter, 0 when absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.BadRequest(name + " must be a positive integer")
	}
	return n, nil
}

// caller returns the authenticated user id. Routes reaching here are
// behind middleware.Auth.
func caller(r *http.Request) uint {
	id, _ := middleware.UserIDFromCtx(r.Context())
	return id
}

// decode binds and validates a JSON body, writing the error response
// itself. It reports whether the handler should go on.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(w, r, dest)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

// message is the body of responses that carry no resource.
type message struct {
	Message string `json:"message"`
}

func isTooLarge(err error) bool {
	var tl *bind.TooLargeError
	return errors.As(err, &tl)
}
