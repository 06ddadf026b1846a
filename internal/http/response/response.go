// Package response формирует единые JSON-конверты ответов HTTP-обработчиков.
//
// Успешный ответ: {statusCode, data, message, success}.
// Ответ с ошибкой: {statusCode, message, success:false, errors:[]}.
package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/videotube/internal/apperror"
)

// InternalMessage отдаётся клиенту для неклассифицированных ошибок.
const InternalMessage = "Internal server error"

// Response стандартный конверт успешного ответа.
type Response struct {
	StatusCode int    `json:"statusCode" example:"200"`
	Data       any    `json:"data"`
	Message    string `json:"message" example:"Success"`
	Success    bool   `json:"success" example:"true"`
}

// ErrorResponse конверт ответа с ошибкой.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode" example:"400"`
	Message    string   `json:"message" example:"All fields are required"`
	Success    bool     `json:"success" example:"false"`
	Errors     []string `json:"errors"`
}

// New собирает успешный конверт.
func New(statusCode int, data any, message string) Response {
	if message == "" {
		message = "Success"
	}
	return Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	}
}

// OK пишет успешный ответ с кодом statusCode.
func OK(w http.ResponseWriter, r *http.Request, statusCode int, data any, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, New(statusCode, data, message))
}

// FromError строит конверт по ошибке. Сообщения неклассифицированных ошибок клиенту не раскрываются.
func FromError(err error) ErrorResponse {
	status := apperror.HTTPStatus(err)
	resp := ErrorResponse{
		StatusCode: status,
		Message:    InternalMessage,
		Errors:     []string{},
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		resp.Message = appErr.Message
		if len(appErr.Details) > 0 {
			resp.Errors = append(resp.Errors, appErr.Details...)
		}
	}
	return resp
}

// Error пишет конверт ошибки со статусом из таксономии apperror.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	resp := FromError(err)
	render.Status(r, resp.StatusCode)
	render.JSON(w, r, resp)
}

// ValidationError переводит ошибки валидатора в ошибку класса Validation.
func ValidationError(errs validator.ValidationErrors) *apperror.Error {
	return apperror.Validation("All fields are required", ValidationMessages(errs)...)
}

// ValidationMessages формирует человекочитаемые сообщения по каждому нарушению.
func ValidationMessages(errs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "required_without":
			msgs = append(msgs, fmt.Sprintf("field %s is required when %s is empty", err.Field(), err.Param()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return msgs
}
