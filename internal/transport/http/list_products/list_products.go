package listproducts

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/spf13/viper"

	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/services/catalogsvc"
	"github.com/merchkit/storefront/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	List(limit int, token string) (catalogsvc.ListPage, error)
}

type response struct {
	Items         any    `json:"items"`
	Limit         int    `json:"limit"`
	NextToken     string `json:"nextToken,omitempty"`
	ReturnedCount int    `json:"returnedCount"`
}

// ListProducts handles the catalog listing request.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	limit := viper.GetInt("pagination.default_limit")
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "limit must be an integer")

			return
		}
		limit = parsed
	}
	maxLimit := viper.GetInt("pagination.max_limit")
	if limit < 1 || limit > maxLimit {
		respond.Error(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))

		return
	}

	page, err := service.List(limit, r.URL.Query().Get("nextToken"))
	if err != nil {
		if errors.Is(err, cursor.ErrInvalidCursor) {
			respond.Error(w, http.StatusBadRequest, err.Error())

			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to list products")
		slog.Error("Error listing products", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, response{
		Items:         page.Items,
		Limit:         limit,
		NextToken:     page.NextToken,
		ReturnedCount: len(page.Items),
	})
}
