package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage/mysql"
)

type OrderGetter interface {
	GetOrder(ctx context.Context, id string) (*storage.ProductionOrder, error)
	ListOrders(ctx context.Context, filter mysql.OrderFilter) ([]storage.OrderSummary, int64, error)
}

// GetOrder returns the full aggregate: order, ingredients, work-logs
// ascending by date.
func GetOrder(log *slog.Logger, result OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrder"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := result.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "Order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, order)
	}
}

type ListResponse struct {
	Orders []storage.OrderSummary `json:"orders"`
	Total  int64                  `json:"total"`
}

// GetOrders serves the list page: optional search plus page/limit.
func GetOrders(log *slog.Logger, result OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrders"

		filter := mysql.OrderFilter{
			Search: r.URL.Query().Get("search"),
		}
		if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
			filter.Page = page
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			filter.Limit = limit
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders, total, err := result.ListOrders(ctx, filter)
		if err != nil {
			log.Error("failed to list orders", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, ListResponse{Orders: orders, Total: total})
	}
}
