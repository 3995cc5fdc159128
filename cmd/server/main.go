package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/server"
)

func main() {
	log.Println("🌱 Starting Harumiki chart data server...")

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	log.Printf("⚙️  Upstream telemetry API: %s", cfg.UpstreamURL)

	registry, err := server.InitializeRegistry(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to load sensor registry: %v", err)
	}

	store, err := server.InitializeCache(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize response cache: %v", err)
	}
	defer store.Close()

	handler, exportHandler, hub := server.InitializeHandlers(cfg, registry, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		server.BroadcastLatest(ctx, registry, handler.Fetcher(), hub)
	}()
	log.Printf("📡 Live broadcaster started (updates every %v)", config.BroadcastInterval)

	router := mux.NewRouter()
	server.SetupRoutes(router, handler, exportHandler, store, hub, cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Println("📡 API endpoints:")
		log.Println("   GET /api/chart-data    - Aggregated chart data")
		log.Println("   GET /api/latest        - Newest reading per sensor")
		log.Println("   GET /api/metrics/list  - Available metrics")
		log.Println("   GET /api/export        - CSV/JSON export")
		log.Println("   GET /api/ws            - Live updates (WebSocket)")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutdown signal received...")

	// Stop background goroutines before waiting on them.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown warning: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("✅ Background tasks stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("⚠️  Some background tasks did not stop in time (forcing exit)")
	}

	log.Println("👋 Server exited cleanly")
}
