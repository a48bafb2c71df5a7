package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/app"
	"github.com/tukangsapu/sapu/internal/handlers"
	"github.com/tukangsapu/sapu/internal/storage/local"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	reportHandler := handlers.NewReportHandler(service)
	rankingHandler := handlers.NewRankingHandler(service)
	groupHandler := handlers.NewGroupHandler(service)
	eventsHandler := handlers.NewEventsHandler(service)

	http.HandleFunc("POST /api/v1/reports", reportHandler.HandleSubmitReport)
	http.HandleFunc("GET /api/v1/reports", reportHandler.HandleListReports)
	http.HandleFunc("GET /api/v1/reports/{id}", reportHandler.HandleGetReport)
	http.HandleFunc("PATCH /api/v1/reports/{id}", reportHandler.HandleUpdateReport)
	http.HandleFunc("DELETE /api/v1/reports/{id}", reportHandler.HandleDeleteReport)

	http.HandleFunc("GET /api/v1/classes", rankingHandler.HandleListClasses)
	http.HandleFunc("GET /api/v1/violations", rankingHandler.HandleListViolations)
	http.HandleFunc("GET /api/v1/ranking", rankingHandler.HandleRanking)
	http.HandleFunc("GET /api/v1/dashboard", rankingHandler.HandleDashboard)
	http.HandleFunc("GET /api/v1/recap", rankingHandler.HandleRecap)

	http.HandleFunc("GET /api/v1/groups", groupHandler.HandleListGroups)
	http.HandleFunc("PUT /api/v1/groups/{id}", groupHandler.HandleUpdateGroup)

	http.HandleFunc("GET /api/v1/events", eventsHandler.HandleEvents)

	// local photo backend needs its directory served over HTTP
	if ls, ok := service.Objects.(*local.LocalStore); ok {
		http.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(ls.Root()))))
	}

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting sapu server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Sapu server failed: %v", err)
	}
}
