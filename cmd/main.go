package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/spatial-data/internal/config"
	"github.com/ukydev/spatial-data/internal/db"
	"github.com/ukydev/spatial-data/internal/events"
	"github.com/ukydev/spatial-data/internal/handlers"
	"github.com/ukydev/spatial-data/internal/service"
)

func main() {
	cfg := config.Load()
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Spatial data service stopped")
	}
}

// configureLogging applies the configured level and formatter to the
// standard logger.
func configureLogging(cfg config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// run connects the store, ensures the geo index and serves HTTP until ctx is
// cancelled. Any error before the listener starts aborts startup.
func run(ctx context.Context, cfg config.Config) error {
	client, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Error("Failed to disconnect from MongoDB")
			return
		}
		log.Info("MongoDB connection closed")
	}()

	coll := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
	indexCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	err = db.EnsureGeoIndex(indexCtx, coll)
	cancel()
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	log.WithFields(log.Fields{
		"database":   cfg.MongoDB,
		"collection": cfg.MongoCollection,
	}).Info("Connected to MongoDB successfully")

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc := service.NewSpatialService(db.NewMongoCollection(coll), publisher)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(handlers.NewSpatialHandler(svc)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func newPublisher(cfg config.Config) (events.Publisher, error) {
	if !cfg.MQTT.Enabled() {
		log.Info("MQTT_BROKER_URL not set, change events disabled")
		return events.NopPublisher{}, nil
	}
	pub, err := events.NewMQTTPublisher(cfg.MQTT, cfg.MongoTimeout)
	if err != nil {
		return nil, fmt.Errorf("event publisher initialization failed: %w", err)
	}
	log.WithField("broker", cfg.MQTT.BrokerURL).Info("Connected to MQTT broker")
	return pub, nil
}
