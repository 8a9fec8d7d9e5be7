package server

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/pkg/validate"
)

// errorResponse 是所有错误响应的结构。
type errorResponse struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields []validate.FieldError) {
	writeJSON(w, status, errorResponse{Code: code, Message: message, Errors: fields})
}
