package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"suitup-be/internal/apperr"
	"suitup-be/internal/logger"
	"suitup-be/internal/utils"

	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error   apperr.Kind       `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// validationError carries per-field messages from the validator.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	return "validation failed"
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

// respondError renders err as {"error": kind, "message": ...}. Internal
// errors never expose their cause.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:   apperr.KindInvalidRequest,
			Message: "Validation failed",
			Fields:  verr.fields,
		})
		return
	}

	kind := apperr.KindOf(err)
	message := apperr.MessageOf(err)
	if kind == apperr.KindInternal && errors.Is(err, context.DeadlineExceeded) {
		kind, message = apperr.KindRequestTimeout, "Request timed out"
	}

	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "rest"),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}

	respondJSON(w, status, errorResponse{Error: kind, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Invalid("Request body too large")
		}
		return apperr.Wrap(apperr.KindInvalidRequest, "Invalid request body", err)
	}
	return nil
}

// decodeValid decodes the body and runs struct validation on it.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return &validationError{fields: utils.FormatValidationError(err)}
	}
	return nil
}
