package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/korylprince/library-desk-server/api"
)

//POST /orders/
func handleCreateOrder(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *OrderCreateRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}
	if strings.TrimSpace(req.Customer) == "" {
		return handleError(http.StatusBadRequest, errors.New("customer empty"))
	}

	customer, err := api.ResolveCustomer(r.Context(), req.Customer)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	receipt, err := api.CreateOrder(r.Context(), customer.ID, req.Items)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: receipt}
}

//GET /orders/:id
func handleReadOrderStatus(w http.ResponseWriter, r *http.Request) *handlerResponse {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode id: %v", err))
	}

	status, err := api.ReadOrderStatus(r.Context(), id)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: status}
}

//GET /customers/resolve?q=
func handleResolveCustomer(w http.ResponseWriter, r *http.Request) *handlerResponse {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		return handleError(http.StatusBadRequest, errors.New("q empty"))
	}

	customer, err := api.ResolveCustomer(r.Context(), q)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: customer}
}
