package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"medicare/config"
	"medicare/db"
	mhttp "medicare/http"
	"medicare/logging"
	"medicare/monitoring"
	"medicare/notebook"
	"medicare/predictor"
)

const (
	heartbeatInterval = 30 * time.Second
	notebookDebounce  = 500 * time.Millisecond
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Audit database, optional
	var store *db.Store
	if cfg.Database.Path != "" {
		store, err = db.Open(cfg.Database.Path)
		if err != nil {
			logger.Warn("database unavailable, continuing without history", zap.String("path", cfg.Database.Path), zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	// 3. Live events
	hub := monitoring.NewHub(logger, cfg.Server.AllowedOrigins)
	go hub.Run()
	defer hub.Stop()
	monitor := monitoring.NewMonitor(hub, logger)
	go monitor.RunHeartbeat(ctx, heartbeatInterval)

	// 4. Train both models before serving
	models := trainAll(ctx, cfg, logger, store, monitor)

	opts := []predictor.ServiceOption{
		predictor.WithCache(cfg.Cache.Size),
		predictor.WithNotifier(monitor),
	}
	if store != nil && cfg.Database.RecordPredictions {
		opts = append(opts, predictor.WithRecorder(store))
	}
	service, err := predictor.NewService(predictor.NewRegistry(models...), logger, opts...)
	if err != nil {
		logger.Fatal("failed to build prediction service", zap.Error(err))
	}

	// 5. Notebooks
	publisher := notebook.NewPublisher(cfg.Paths.NotebooksSourceDir, cfg.Paths.NotebooksDir, notebook.Documents, logger)
	if _, err := publisher.PublishAll(); err != nil {
		logger.Error("publish notebooks failed", zap.Error(err))
	}
	if cfg.Notebooks.Watch {
		watcher, err := notebook.NewWatcher(publisher, notebookDebounce, logger)
		if err != nil {
			logger.Warn("notebook watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	// 6. HTTP server
	deps := mhttp.Dependencies{
		Models:       service,
		Events:       hub,
		NotebooksDir: cfg.Paths.NotebooksDir,
		Logger:       logger,
	}
	if store != nil {
		deps.History = store
	}
	server := mhttp.NewServer(cfg.Server, deps)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// 7. Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

// trainAll trains every disease sequentially. A failed disease is logged and
// left out, so its endpoints answer 503.
func trainAll(ctx context.Context, cfg *config.Config, logger *zap.Logger, store *db.Store, monitor *monitoring.Monitor) []*predictor.Model {
	trainer := predictor.NewTrainer(cfg.Training, logger)

	var models []*predictor.Model
	for _, d := range predictor.Diseases() {
		path, _ := cfg.DatasetPath(d.Key)
		model, err := trainer.Train(d, path)
		if err != nil {
			logger.Error("training failed", zap.String("disease", d.Key), zap.String("dataset", path), zap.Error(err))
			monitor.NotifyTrainingFailed(d.Key, err)
			continue
		}
		models = append(models, model)
		monitor.NotifyTraining(model)

		if store != nil {
			if err := store.SaveTrainingRun(ctx, model); err != nil {
				logger.Warn("save training log failed", zap.String("disease", d.Key), zap.Error(err))
			}
		}
	}
	return models
}
