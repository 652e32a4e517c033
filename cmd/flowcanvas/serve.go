package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"flowcanvas/internal/handler"
	"flowcanvas/internal/hub"
	"flowcanvas/internal/repository/sqlite"
	"flowcanvas/internal/service"
	"flowcanvas/internal/store"
	"flowcanvas/internal/submission"
	"flowcanvas/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	var watchPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor API, validator and event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, watchPath)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&watchPath, "watch", "w", "", "pipeline document to load at startup and reload when it changes")
	return cmd
}

func (a *app) serve(ctx context.Context, watchPath string) error {
	cfg := a.cfg
	logger := a.logger

	repo, err := sqlite.New(cfg.AnalysisLog.DSN)
	if err != nil {
		return err
	}
	defer repo.Close()
	logger.Info("analysis log opened", zap.String("dsn", cfg.AnalysisLog.DSN))

	st := store.New(store.Options{
		MaxHistory:    cfg.History.MaxSize,
		FieldDebounce: cfg.History.FieldDebounce,
		Logger:        logger,
	})
	defer st.Close()

	eventBus := service.NewEventBus()
	client := submission.NewClient(cfg.Submission.Endpoint, cfg.Submission.Timeout, submission.WithLogger(logger))
	svc := service.NewPipelineService(st, repo, client, eventBus, logger)
	defer svc.Close()

	if watchPath != "" {
		if _, err := svc.ImportFile(watchPath); err != nil {
			return err
		}
		// The loaded document is the base state, not an undoable step
		if err := st.InitializeHistory(); err != nil {
			return err
		}
	}

	sseHub := hub.New(logger)
	router := handler.NewRouter(handler.NewGraphHandler(svc, logger), handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Events:         sseHub,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sseHub.Run(gctx) })
	g.Go(func() error { return sseHub.Relay(gctx, eventBus) })
	if watchPath != "" {
		reload := func() {
			if res, err := svc.ImportFile(watchPath); err != nil {
				logger.Warn("reload failed", zap.String("path", watchPath), zap.Error(err))
			} else {
				logger.Info("pipeline reloaded", zap.String("path", watchPath), zap.Int("nodes", res.Nodes), zap.Int("edges", res.Edges))
			}
		}
		g.Go(func() error { return watcher.New(watchPath, reload, logger).Watch(gctx) })
	}
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("validator", client.Endpoint()))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", zap.Error(err))
		}
		// Pending field edits still become a history entry
		st.FlushPending()
		return nil
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
