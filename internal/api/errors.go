package api

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest           = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized         = &AppError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden            = &AppError{Code: http.StatusForbidden, Message: "forbidden"}
	ErrNotFound             = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrInternalServer       = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
	ErrInvalidToken         = &AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token"}
	ErrMissingMessage       = &AppError{Code: http.StatusBadRequest, Message: "missing message"}
	ErrConfirmationRequired = &AppError{
		Code:    http.StatusBadRequest,
		Message: "delete not confirmed: include header X-Confirm-Delete: true or ?confirm=true to proceed",
	}
	ErrTranslationUpstream = &AppError{Code: http.StatusInternalServerError, Message: "translation service error"}
)

func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONErrorMessage(w, appErr.Code, appErr.Message)
		return
	}
	JSONErrorMessage(w, http.StatusInternalServerError, "internal server error")
}
