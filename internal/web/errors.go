package web

// errors.go turns errors into responses. The technical error is logged with
// the request id; the client gets the mapped message and code from
// core.MapError.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/core"
	"github.com/JonMunkholm/scenecsv/internal/logging"
	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/source"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its mapped message. A zero status is
// derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var convErr *placement.ConversionError
	switch {
	case errors.Is(err, core.ErrProfileNotFound),
		errors.Is(err, source.ErrSourceNotFound),
		errors.Is(err, catalog.ErrPrefabNotFound),
		errors.Is(err, scene.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManySpawns):
		return http.StatusTooManyRequests
	case errors.Is(err, source.ErrSourceTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrCatalogReadOnly):
		return http.StatusNotImplemented
	case errors.As(err, &convErr),
		errors.Is(err, catalog.ErrInvalidPrefab),
		errors.Is(err, placement.ErrInvalidBinding),
		errors.Is(err, source.ErrInvalidName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")
