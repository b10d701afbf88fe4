// Package handlers общие помощники HTTP-слоя: кодирование ответов и разбор тела запроса.
// Каждая операция API живет в собственном подпакете.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Машиночитаемые виды ошибок в теле ответа
const (
	KindInvalidInput      = "InvalidInput"
	KindInvalidSlot       = "InvalidSlot"
	KindBranchNotFound    = "BranchNotFound"
	KindNotFound          = "NotFound"
	KindCapacityExceeded  = "CapacityExceeded"
	KindInvalidTransition = "InvalidTransition"
	KindForbidden         = "Forbidden"
	KindUnauthenticated   = "Unauthenticated"
	KindRateLimited       = "RateLimited"
	KindInternal          = "Internal"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	maxBodyBytes     = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse тело ответа операций без собственной модели
type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError отправляет ошибку с видом и человекочитаемым сообщением
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, ErrorResponse{Error: kind, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, KindInvalidInput, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, KindNotFound, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, KindForbidden, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, KindUnauthenticated, message)
}

func RespondConflict(w http.ResponseWriter, kind, message string) {
	RespondError(w, http.StatusConflict, kind, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, KindInternal, msgInternalError)
}

// DecodeJSON разбирает тело запроса, отклоняя неизвестные поля и лишние данные
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
