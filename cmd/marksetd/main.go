package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"markbook/internal/calcclient"
	"markbook/internal/gateway"
	"markbook/internal/markset"
	"markbook/internal/shared"
)

func main() {
	log.Println("INFO: Starting Mark Set Service...")

	// 1. Load Configuration
	shared.LoadEnv("")
	cfg, err := shared.LoadMarksetConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Connect to MongoDB
	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	// 3. Initialize Service, Calc Client, and Routes
	service := markset.NewService(db)
	calc := calcclient.New(cfg.CalcServiceAddr)
	router := gateway.SetupRoutes(service, calc, cfg.CORS)

	// 4. Configure Server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Start Server in a Goroutine
	go func() {
		log.Printf("INFO: Mark Set Service listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("INFO: Shutting down Mark Set Service...")
	log.Println("INFO: Mark Set Service stopped.")
}
