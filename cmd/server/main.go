package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hazemkhaled/text-extractor/api/handlers"
	"github.com/hazemkhaled/text-extractor/api/routes"
	"github.com/hazemkhaled/text-extractor/config"
	"github.com/hazemkhaled/text-extractor/internal/service/extraction"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
	"github.com/hazemkhaled/text-extractor/pkg/worker"
)

func main() {
	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	srvCfg := config.GetServerConfig()
	if err := srvCfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", logger.Error(err))
	}
	extCfg := config.GetExtractionConfig()

	// init extraction pipeline
	svc, err := extraction.GetService(log)
	if err != nil {
		log.Fatal("Failed to initialize extraction service", logger.Error(err))
	}
	defer svc.Close()

	// init background worker pool
	pool := worker.NewPool(worker.Config{
		Concurrency: srvCfg.WorkerConcurrency,
		QueueDepth:  srvCfg.WorkerQueueDepth,
	}, log)
	pool.Start(context.Background())

	// init handlers and routes
	h := handlers.NewHandlers(svc, pool, srvCfg.NotifyDefaultURL, handlers.HealthInfo{
		RemoteEngine: extraction.RemoteEngineName(),
		PageCeiling:  extCfg.PageCeiling,
		RasterDPI:    extCfg.RasterDPI,
	}, log)

	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, srvCfg.APISecret)

	srv := &http.Server{
		Addr:    srvCfg.ListenAddr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("addr", srvCfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}

	// drain in-flight jobs, then release the local OCR engine
	pool.Stop()
	log.Info("Shutdown complete")
}
