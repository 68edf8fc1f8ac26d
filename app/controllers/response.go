package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"inkpost/app/middleware"
	"inkpost/app/services"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendMessage(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"message": message})
}

func sendValidation(w http.ResponseWriter, ve *services.ValidationError) {
	sendJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": ve.Fields})
}

// sendError maps a service error onto its HTTP status and body. Anything
// unrecognized is logged and reported as a bare server error.
func sendError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		sendValidation(w, ve)
	case errors.Is(err, services.ErrInvalidCredentials):
		sendMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, services.ErrDuplicateIdentity):
		sendMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrDuplicateCategory):
		sendMessage(w, http.StatusBadRequest, "Category already exists")
	case errors.Is(err, services.ErrDuplicateTitle):
		sendMessage(w, http.StatusBadRequest, "A post with this title already exists")
	case errors.Is(err, services.ErrCategoryNotFound):
		sendMessage(w, http.StatusBadRequest, "Category not found")
	case errors.Is(err, services.ErrUnauthenticated):
		sendMessage(w, http.StatusUnauthorized, "No token, authorization denied")
	case errors.Is(err, services.ErrForbidden):
		sendMessage(w, http.StatusForbidden, "Not authorized to modify this post")
	case errors.Is(err, services.ErrPostNotFound):
		sendMessage(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrUserNotFound):
		sendMessage(w, http.StatusNotFound, "User not found")
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.RequestIDFromContext(r.Context()),
		}).Error("request failed")
		sendMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// decodeJSON reads a bounded JSON body into dst. Decoding problems come back
// as a validation error on the "body" parameter.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return bodyError("Request body is required")
		case errors.As(err, &tooLarge):
			return bodyError(fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit))
		default:
			return bodyError("Request body must be valid JSON")
		}
	}
	return nil
}

func bodyError(msg string) *services.ValidationError {
	return &services.ValidationError{Fields: []services.FieldError{{Param: "body", Msg: msg}}}
}

// callerID returns the authenticated identity or 0 when the request is
// anonymous.
func callerID(r *http.Request) int64 {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}
