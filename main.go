// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tapline/barmatrix/config"
	"github.com/tapline/barmatrix/database"
	"github.com/tapline/barmatrix/handlers"
	"github.com/tapline/barmatrix/matrix"
	"github.com/tapline/barmatrix/services"
)

func main() {
	log.Println("Starting bar matrix backend...")

	// Local .env (DB_PASSWORD etc.) is optional; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment and config.yaml.")
	}

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}

	err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName)
	log.Printf("Override durations: buffer=%s cap=%s live-default=%s no-event-fallback=%s",
		config.AppConfig.Overrides.LiveEventBuffer, config.AppConfig.Overrides.MaxOverride,
		config.AppConfig.Overrides.LiveEventDefault, config.AppConfig.Overrides.NoEventFallback)

	err = database.InitDB(config.AppConfig.Database)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	// Seed guide feed freshness state from the DB.
	services.InitLastKnownPublishStamps()

	// Wire services to their stores and the matrix control endpoint.
	overrideService := &services.OverrideService{
		Schedule: database.ScheduleStore{},
		Cfg:      config.AppConfig.Overrides,
	}
	routingService := &services.RoutingService{
		Matrix:    matrix.NewClient(config.AppConfig.Matrix.ControlURL, config.AppConfig.Matrix.Timeout),
		Routes:    database.RouteStore{},
		Channels:  database.ChannelStore{},
		Overrides: overrideService,
	}
	handlers.Routing = routingService
	handlers.Overrides = overrideService

	// Sweep expired manual overrides back to automated control.
	go func() {
		interval := config.AppConfig.Sweep.CheckInterval
		log.Printf("Starting override sweep ticker (every %s).\n", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			routingService.RevertExpiredOverrides()
		}
	}()

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "bar matrix backend is healthy"}`)
	})

	http.HandleFunc("/api/routes/switch", handlers.SwitchRouteHandler)
	http.HandleFunc("/api/routes", handlers.ListRoutesHandler)
	http.HandleFunc("/api/overrides/preview", handlers.PreviewOverrideHandler)
	http.HandleFunc("/api/channels/tuned", handlers.TuneNotificationHandler)

	// Admin routes for managing guide feed data. Paths end with / to catch
	// the trailing {source} segment.
	http.HandleFunc("/api/admin/refresh-schedule/", handlers.ForceRefreshScheduleHandler)
	http.HandleFunc("/api/admin/check-update-schedule/", handlers.CheckAndUpdateScheduleHandler)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	err = http.ListenAndServe(serverAddr, nil)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
