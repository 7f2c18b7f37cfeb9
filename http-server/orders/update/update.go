package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/service/orders"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/validation"
)

type OrderUpdater interface {
	UpdateOrder(ctx context.Context, id string, order *storage.ProductionOrder) error
	GetOrder(ctx context.Context, id string) (*storage.ProductionOrder, error)
}

// UpdateOrder replaces the whole aggregate: scalars updated, child
// collections deleted and recreated from the submitted payload. Returns the
// refreshed aggregate, 400 with field errors, or 404 for an unknown id.
func UpdateOrder(log *slog.Logger, svc *orders.Service, res OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.update.UpdateOrder"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req storage.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		if err := validation.ValidateOrder(&req); err != nil {
			var verr *validation.ValidationError
			if errors.As(err, &verr) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]interface{}{
					"error":  "validation failed",
					"fields": verr.Fields,
				})
				return
			}
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		order, err := svc.FromRequest(&req)
		if err != nil {
			log.Error("failed to build order", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		log.Info("updating order", slog.String("id", id))

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := res.UpdateOrder(ctx, id, order); err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "Order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to update order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		updated, err := res.GetOrder(ctx, id)
		if err != nil {
			log.Error("failed to reload updated order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, updated)
	}
}
