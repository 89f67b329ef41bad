package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"better-being/internal/middleware"
	"better-being/internal/model"
	"better-being/internal/validation"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// domainStatus maps domain error codes to HTTP status codes.
var domainStatus = map[string]int{
	model.ErrCodeMissingField:        http.StatusBadRequest,
	model.ErrCodeValidation:          http.StatusBadRequest,
	model.ErrCodeEmptyCart:           http.StatusBadRequest,
	model.ErrCodeInsufficientStock:   http.StatusBadRequest,
	model.ErrCodeProductOutOfStock:   http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:     http.StatusBadRequest,
	model.ErrCodeInvalidSort:         http.StatusBadRequest,
	model.ErrCodeOrderNotCancellable: http.StatusBadRequest,
	model.ErrCodeInvalidStatus:       http.StatusBadRequest,
	model.ErrCodeInvalidTransition:   http.StatusBadRequest,
	model.ErrCodeInvalidPoints:       http.StatusBadRequest,
	model.ErrCodeInsufficientPoints:  http.StatusBadRequest,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
	model.ErrCodeForbidden:           http.StatusForbidden,
	model.ErrCodeProductNotFound:     http.StatusNotFound,
	model.ErrCodeCartItemNotFound:    http.StatusNotFound,
	model.ErrCodeOrderNotFound:       http.StatusNotFound,
	model.ErrCodeUserNotFound:        http.StatusNotFound,
	model.ErrCodeDuplicateRequest:    http.StatusConflict,
}

// Options configures behaviour shared by all handlers.
type Options struct {
	// ExposeErrors puts internal error text in 500 responses. Off in production.
	ExposeErrors bool
}

// base carries the response helpers every handler uses.
type base struct {
	validate *validatorv10.Validate
	opts     Options
	logger   zerolog.Logger
}

func newBase(validate *validatorv10.Validate, opts Options, logger zerolog.Logger, name string) base {
	if validate == nil {
		validate = validation.New()
	}
	return base{
		validate: validate,
		opts:     opts,
		logger:   logger.With().Str("handler", name).Logger(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError translates a service error into a response. Unknown
// errors become a 500 carrying fallback.
func (b base) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		b.logger.Error().Err(err).Msg(fallback)
		message = fallback
		if b.opts.ExposeErrors {
			message = fallback + ": " + err.Error()
		}
	}

	writeError(w, status, code, message, b.logger)
}

func classify(err error) (int, string, string) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusBadRequest, model.ErrCodeInsufficientStock, stockErr.Error()
	}

	var notFound *model.ProductNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, model.ErrCodeProductNotFound, notFound.Error()
	}

	var transition *model.InvalidTransitionError
	if errors.As(err, &transition) {
		return http.StatusBadRequest, model.ErrCodeInvalidTransition, transition.Error()
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := domainStatus[domainErr.Code]; ok {
			return status, domainErr.Code, domainErr.Message
		}
	}

	return http.StatusInternalServerError, model.ErrCodeInternalError, err.Error()
}

// decode reads a JSON body into dst and validates it. On failure it writes a
// 400 response and returns false.
func (b base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body", b.logger)
		return false
	}

	if err := b.validate.Struct(dst); err != nil {
		fields := validation.Fields(err)
		b.logger.Warn().Interface("fields", fields).Msg("request validation failed")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "Request validation failed",
			Fields:  fields,
		})
		return false
	}

	return true
}

// userID returns the authenticated user. It writes a 401 and returns false
// when the request carries none.
func (b base) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message, b.logger)
		return 0, false
	}
	return id, true
}

// pathUUID parses a UUID path value, writing a 400 when it is malformed.
func (b base) pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Invalid "+label+" ID format", b.logger)
		return uuid.Nil, false
	}
	return id, true
}
