// Package app provides the main application logic and lifecycle management.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"lingo-relay/internal/httpclient"
	"lingo-relay/internal/i18n"
	"lingo-relay/internal/models"
	"lingo-relay/internal/services"
	"lingo-relay/internal/store"
	"lingo-relay/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// App holds all services and manages the application lifecycle.
type App struct {
	engine            *gin.Engine
	configManager     types.ConfigManager
	usageService      *services.UsageService
	expiryService     *services.ExpiryService
	cleanupService    *services.CleanupService
	httpClientManager *httpclient.Manager
	storage           store.Store
	db                *gorm.DB
	httpServer        *http.Server
}

// AppParams defines the dependencies for the App.
type AppParams struct {
	dig.In
	Engine            *gin.Engine
	ConfigManager     types.ConfigManager
	UsageService      *services.UsageService
	ExpiryService     *services.ExpiryService
	CleanupService    *services.CleanupService
	HTTPClientManager *httpclient.Manager
	Storage           store.Store
	DB                *gorm.DB
}

// NewApp is the constructor for App, with dependencies injected by dig.
func NewApp(params AppParams) *App {
	return &App{
		engine:            params.Engine,
		configManager:     params.ConfigManager,
		usageService:      params.UsageService,
		expiryService:     params.ExpiryService,
		cleanupService:    params.CleanupService,
		httpClientManager: params.HTTPClientManager,
		storage:           params.Storage,
		db:                params.DB,
	}
}

// Start runs the application, it is a non-blocking call.
func (a *App) Start() error {
	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	if err := a.db.AutoMigrate(
		&models.Tenant{},
		&models.Group{},
		&models.GroupAdmin{},
		&models.WhitelistEntry{},
	); err != nil {
		return fmt.Errorf("database auto-migration failed: %w", err)
	}
	logrus.Info("Database auto-migration completed.")

	// Background services
	a.usageService.Start()
	a.expiryService.Start()
	a.cleanupService.Start()

	a.configManager.DisplayServerConfig()

	serverConfig := a.configManager.GetEffectiveServerConfig()
	a.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:        a.engine,
		ReadTimeout:    time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(serverConfig.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(serverConfig.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Infof("Server address: http://%s:%d", serverConfig.Host, serverConfig.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server startup failed: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the application.
func (a *App) Stop(ctx context.Context) {
	logrus.Info("Shutting down server...")

	if err := a.httpServer.Shutdown(ctx); err != nil {
		logrus.Warnf("HTTP server graceful shutdown timed out, forcing close: %v", err)
		if closeErr := a.httpServer.Close(); closeErr != nil {
			logrus.Errorf("Error forcing HTTP server to close: %v", closeErr)
		}
	}
	logrus.Info("HTTP server has been shut down.")

	stoppableServices := []func(context.Context){
		a.usageService.Stop,
		a.expiryService.Stop,
		a.cleanupService.Stop,
	}

	var wg sync.WaitGroup
	wg.Add(len(stoppableServices))
	for _, stopFunc := range stoppableServices {
		go func(stop func(context.Context)) {
			defer wg.Done()
			stop(ctx)
		}(stopFunc)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("All background services stopped.")
	case <-ctx.Done():
		logrus.Warn("Shutdown timed out, some services may not have stopped gracefully.")
	}

	if a.httpClientManager != nil {
		a.httpClientManager.CloseIdleConnections()
	}

	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			logrus.WithError(err).Warn("Error closing storage")
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logrus.WithError(err).Warn("Error closing database")
			}
		}
	}

	logrus.Info("Server exited gracefully")
}
