package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/service/orders"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/validation"
)

type OrderSaver interface {
	SaveOrder(ctx context.Context, order *storage.ProductionOrder) error
	GetOrder(ctx context.Context, id string) (*storage.ProductionOrder, error)
}

// SaveOrder creates a new order aggregate. Validation failures come back as
// 400 with the full field-error list; the stored aggregate is re-read and
// returned so the client sees the derived fields the server computed.
func SaveOrder(log *slog.Logger, svc *orders.Service, res OrderSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.save.SaveOrder"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := res.SaveOrder(ctx, order); err != nil {
			log.Error("failed to save order", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		saved, err := res.GetOrder(ctx, order.ID)
		if err != nil {
			log.Error("failed to reload saved order", slog.String("op", op), slog.String("id", order.ID), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		log.Info("order created", slog.String("id", saved.ID), slog.String("customer", saved.CustomerName))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, saved)
	}
}
