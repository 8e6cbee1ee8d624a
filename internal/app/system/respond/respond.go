// Package respond writes the JSON envelope every endpoint returns:
//
//	{"success": true,  "data": ..., "message": "..."}
//	{"success": false, "error": "...", "details": {...}}
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"go.uber.org/zap"
)

// Envelope is the response body shape.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 success envelope with a message.
func OKMessage(w http.ResponseWriter, data any, msg string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: msg})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any, msg string) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: msg})
}

// Error writes err as a failure envelope. Internal errors are logged with the
// request path and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apierr.From(err)
	if e.Kind == apierr.KindInternal && log != nil {
		log.Error("request failed",
			zap.Error(e.Err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
	}
	JSON(w, e.Status(), Envelope{Success: false, Error: e.Message, Details: e.Details})
}
