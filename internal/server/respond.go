package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"printdesk/internal/pricing"
)

type ctxKey int

const correlationIDKey ctxKey = 0

// CorrelationID returns the request's correlation id, set by the
// middleware in server.go.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

type errorBody struct {
	Error         string `json:"error"`
	Field         string `json:"field,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
// 4xx responses name the offending field; 5xx responses stay generic
// and carry the correlation id for server-side log lookup.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	corrID := CorrelationID(r.Context())

	switch pricing.KindOf(err) {
	case pricing.KindInvalidArgument:
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: pricing.FieldOf(err)})
	case pricing.KindNotFound:
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Field: pricing.FieldOf(err)})
	case pricing.KindUnprocessable:
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("correlation_id", corrID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:         "internal error",
			CorrelationID: corrID,
		})
	}
}
