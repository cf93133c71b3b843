package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/korylprince/library-desk-server/api"
)

//GET /inventory/?threshold=
func handleReadInventorySummary(w http.ResponseWriter, r *http.Request) *handlerResponse {
	threshold := api.DefaultLowStockThreshold
	if t := r.URL.Query().Get("threshold"); t != "" {
		var err error
		if threshold, err = strconv.Atoi(t); err != nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode threshold: %v", err))
		}
	}

	summary, err := api.ReadInventorySummary(r.Context(), threshold)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: summary}
}
