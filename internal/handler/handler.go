package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/codec"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/service"
	"flowcanvas/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies, imports included
const maxBodyBytes = 4 << 20

// ErrorResponse is the editor API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GraphHandler serves the editor API and the validator endpoints
type GraphHandler struct {
	svc      *service.PipelineService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.PipelineService, logger *zap.Logger) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger.Named("handler"),
	}
}

// decode reads a JSON body into dst and validates its struct tags
func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	if err := h.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return formatValidation(err)
	}
	return nil
}

// formatValidation flattens validator errors into one message
func formatValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
	return errors.New(msg)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownKind),
		errors.Is(err, codec.ErrUnsupportedFormat),
		errors.Is(err, store.ErrDuplicateNode),
		errors.Is(err, domain.ErrInvalidGraph):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Helper methods

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", zap.Error(err))
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

// writeDetail writes the validator's {detail} error body
func (h *GraphHandler) writeDetail(w http.ResponseWriter, detail string, statusCode int) {
	h.writeJSON(w, map[string]string{"detail": detail}, statusCode)
}
