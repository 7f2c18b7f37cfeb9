package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	deleteorder "github.com/yunhaimaster/capsuleDB-demo-sub001/http-server/orders/delete"
	getorder "github.com/yunhaimaster/capsuleDB-demo-sub001/http-server/orders/get"
	saveorder "github.com/yunhaimaster/capsuleDB-demo-sub001/http-server/orders/save"
	updateorder "github.com/yunhaimaster/capsuleDB-demo-sub001/http-server/orders/update"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/http-server/report"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/config"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/middleware/auth"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/service/export"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/service/orders"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, orderService *orders.Service, reportService *export.ReportService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/orders", getorder.GetOrders(log, storage))
	router.Post("/api/orders", saveorder.SaveOrder(log, orderService, storage))
	router.Get("/api/orders/{id}", getorder.GetOrder(log, storage))
	router.Put("/api/orders/{id}", updateorder.UpdateOrder(log, orderService, storage))
	router.Delete("/api/orders/{id}", deleteorder.DeleteOrder(log, storage))

	router.With(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)).
		Get("/api/report/excel", report.GenerateReportExcel(log, reportService))

	return router
}
