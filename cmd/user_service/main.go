package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"user_service/internal/auth"
	"user_service/internal/config"
	"user_service/internal/handler"
	"user_service/internal/logger"
	"user_service/internal/mailer"
	"user_service/internal/service"
	"user_service/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	//PARSE ARGS
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to the yaml config")

	flag.Parse()
	if configPath == "" {
		log.Fatal("failed get config path from flags")
	}

	cfg := config.MustLoadConfig(configPath)

	//INIT LOGGER
	lgr := logger.Setup(cfg.Env)
	lgr.Info("starting user service", slog.String("address", cfg.HTTPServer.Address))

	if cfg.Env == logger.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lgr); err != nil {
		lgr.Error("user service stopped", slog.Any("error", err))
		os.Exit(1)
	}

	lgr.Info("user service stopped")
}

func run(ctx context.Context, cfg *config.Config, lgr *slog.Logger) error {
	//INIT DB
	st, err := storage.New(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	if !cfg.DB.SkipMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		lgr.Info("migrations applied", slog.String("driver", cfg.DB.Driver))
	}

	notifier, err := mailer.New(cfg.Mail, lgr)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	srvc := service.NewService(st, tokens, notifier, lgr)
	h := handler.NewHandler(srvc, tokens, lgr)

	//INIT SERVER
	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      h.InitRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// pending welcome mails must not be cut off by closing the process
	srvc.Wait()

	return nil
}
