package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/app"
	"github.com/tukangsapu/sapu/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	if len(service.Config.GSheet) == 0 {
		logger.Error.Fatal("No gsheet exports configured")
	}

	scheduler, err := export.ScheduleExports(service)
	if err != nil {
		logger.Error.Fatalf("Failed to schedule exports: %v", err)
	}
	defer scheduler.Stop()

	logger.Info.Printf("Exporter running with %d scheduled sheets", len(service.Config.GSheet))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Shutting down exporter...")
}
