package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

type OrderDeleter interface {
	DeleteOrder(ctx context.Context, id string) error
}

// DeleteOrder removes an order and, through the cascade, its ingredients
// and work-logs. No soft delete and no recovery; a repeated delete of the
// same id gets 404.
func DeleteOrder(log *slog.Logger, res OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.delete.DeleteOrder"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := res.DeleteOrder(ctx, id); err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "Order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to delete order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		log.Info("order deleted", slog.String("id", id))

		render.JSON(w, r, map[string]interface{}{
			"status": "deleted",
			"id":     id,
		})
	}
}
