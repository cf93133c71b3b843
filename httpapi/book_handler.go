package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/korylprince/library-desk-server/api"
)

//GET /books/?q=&by=
func handleFindBooks(w http.ResponseWriter, r *http.Request) *handlerResponse {
	q := r.URL.Query()

	books, err := api.FindBooks(r.Context(), q.Get("q"), api.ParseSearchField(q.Get("by")))
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &BooksResponse{Books: books}}
}

//GET /books/resolve?title=
func handleResolveBooks(w http.ResponseWriter, r *http.Request) *handlerResponse {
	title := r.URL.Query().Get("title")
	if title == "" {
		return handleError(http.StatusBadRequest, errors.New("title empty"))
	}

	books, err := api.ResolveISBNMatches(r.Context(), title)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &BooksResponse{Books: books}}
}

//POST /books/:isbn/restock
func handleRestockBook(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *RestockRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}
	if req.Quantity == nil {
		return handleError(http.StatusBadRequest, errors.New("quantity is required"))
	}

	result, err := api.RestockBook(r.Context(), mux.Vars(r)["isbn"], *req.Quantity)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: result}
}

//POST /books/:isbn/price
func handleUpdatePrice(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *PriceRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}
	if req.Price == nil {
		return handleError(http.StatusBadRequest, errors.New("price is required"))
	}

	change, err := api.UpdatePrice(r.Context(), mux.Vars(r)["isbn"], *req.Price)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: change}
}
