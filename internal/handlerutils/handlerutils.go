package handlerutils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

// APIHandler is an http handler that returns its error instead of writing it.
type APIHandler func(w http.ResponseWriter, r *http.Request) error

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// MakeHandler adapts h and writes any returned error as the JSON error
// envelope. Errors that are not ServerErrors become a 500 and are logged.
func MakeHandler(h APIHandler, log logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var serverError *servererrors.ServerError
		if !errors.As(err, &serverError) {
			log.Error("unhandled error",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			WriteErrorJSON(w, http.StatusInternalServerError, "something went wrong", nil)
			return
		}

		if serverError.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("kind", serverError.Kind.String()),
				zap.Error(errors.Unwrap(serverError)),
			)
		} else {
			log.Debug("request rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("kind", serverError.Kind.String()),
				zap.String("message", serverError.Message),
			)
		}

		WriteErrorJSON(w, serverError.StatusCode, serverError.Message, serverError.Errors)
	}
}

func ParseJSON(r *http.Request, payload any) error {
	if r.Body == nil {
		return servererrors.New(http.StatusBadRequest, servererrors.ErrInvalidRequestPayload.Error(), nil)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return servererrors.New(http.StatusBadRequest, servererrors.ErrInvalidRequestPayload.Error(), err.Error())
	}
	return nil
}

// ParseProviderJSON is ParseJSON for third-party payloads, which carry more
// fields than we read.
func ParseProviderJSON(r *http.Request, payload any) error {
	if r.Body == nil {
		return servererrors.New(http.StatusBadRequest, servererrors.ErrInvalidRequestPayload.Error(), nil)
	}
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return servererrors.New(http.StatusBadRequest, servererrors.ErrInvalidRequestPayload.Error(), err.Error())
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func WriteSuccessJSON(w http.ResponseWriter, status int, message string, data any) error {
	return WriteJSON(w, status, successResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WriteErrorJSON(w http.ResponseWriter, status int, message string, errs any) error {
	return WriteJSON(w, status, errorResponse{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}
