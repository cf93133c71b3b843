package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/korylprince/library-desk-server/api"
)

//POST /operators/
func handleCreateOperator(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *OperatorCreateRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	id, err := api.CreateOperatorWithCredentials(r.Context(), req.Email, req.Password, req.Name)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	op, err := api.ReadOperator(r.Context(), id)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	if op == nil {
		return handleError(http.StatusInternalServerError, errors.New("Could not find operator, but just created"))
	}

	return &handlerResponse{Code: http.StatusOK, Body: op}
}

//GET /operators/:id
func handleReadOperator(w http.ResponseWriter, r *http.Request) *handlerResponse {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode id: %v", err))
	}

	op, err := api.ReadOperator(r.Context(), id)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}
	if op == nil {
		return handleError(http.StatusNotFound, errors.New("Could not find operator"))
	}

	return &handlerResponse{Code: http.StatusOK, Body: op}
}

//POST /operators/:id/password
func handleChangeOperatorPassword(w http.ResponseWriter, r *http.Request) *handlerResponse {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode id: %v", err))
	}

	var req *ChangePasswordRequest
	d := json.NewDecoder(r.Body)

	err = d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	op := r.Context().Value(api.OperatorKey).(*api.Operator)

	if op.ID != id {
		return handleError(http.StatusBadRequest, fmt.Errorf("operator id mismatch: URL: %d, Authenticated: %d", id, op.ID))
	}

	err = op.ChangePassword(r.Context(), req.OldPassword, req.NewPassword)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: op}
}

//POST /auth
func handleAuthenticate(s SessionStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *AuthenticateRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		if req.Email == "" || req.Password == "" {
			return handleError(http.StatusBadRequest, errors.New("email or password empty"))
		}

		op, err := api.ReadOperatorByEmail(r.Context(), req.Email)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}
		if op == nil {
			return handleError(http.StatusUnauthorized, errors.New("Could not find operator"))
		}

		err = op.Authenticate(req.Password)
		if err != nil {
			return handleError(http.StatusUnauthorized, fmt.Errorf("Could not authenticate operator %d:%s: %v", op.ID, op.Email, err))
		}

		key, err := s.Create(op.ID)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not create session: %v", err))
		}

		resp := &handlerResponse{Code: http.StatusOK, Body: &AuthenticateResponse{SessionKey: key, Operator: op}}
		resp.Operator = op
		return resp
	}
}
