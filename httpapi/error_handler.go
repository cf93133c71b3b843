package httpapi

import (
	"errors"
	"net/http"

	"github.com/korylprince/library-desk-server/api"
)

//ErrorResponse represents an HTTP error. If the error is 409 Conflict, the DuplicateID field will be populated.
//Description is only set for errors caused by the request.
type ErrorResponse struct {
	Code        int    `json:"code"`
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
	DuplicateID int64  `json:"duplicate_id,omitempty"`
}

//handleError returns a handlerResponse response for the given code
func handleError(code int, err error) *handlerResponse {
	return &handlerResponse{Code: code, Body: &ErrorResponse{Code: code, Error: http.StatusText(code)}, Err: err}
}

//notFoundHandler returns a 404 handlerResponse
func notFoundHandler(w http.ResponseWriter, r *http.Request) *handlerResponse {
	return handleError(http.StatusNotFound, errors.New("Could not find handler"))
}

//checkAPIError checks an api.Error and returns a handlerResponse for it, or nil if there was no error
func checkAPIError(err error) *handlerResponse {
	if err == nil {
		return nil
	}

	var e *api.Error
	if !errors.As(err, &e) {
		return handleError(http.StatusInternalServerError, err)
	}

	var code int
	switch e.Type {
	case api.ErrorTypeNotFound:
		code = http.StatusNotFound
	case api.ErrorTypeValidation:
		code = http.StatusBadRequest
	case api.ErrorTypeDuplicate:
		code = http.StatusConflict
	default:
		return handleError(http.StatusInternalServerError, err)
	}

	return &handlerResponse{Code: code, Body: &ErrorResponse{
		Code:        code,
		Error:       http.StatusText(code),
		Description: e.Description,
		DuplicateID: e.DuplicateID,
	}, Err: err}
}
