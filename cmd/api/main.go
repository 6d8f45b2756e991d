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

	"hikayat/cmd/app"
	"hikayat/internal/config"
	"hikayat/internal/logging"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()
	log := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.App(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "ошибка инициализации приложения", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// recordings in progress end early and are still saved
	server.RegisterOnShutdown(application.Services.Media.StopRecordings)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "ошибка остановки сервера", "error", err)
		}
	}()

	// Starting the server
	log.Info(ctx, "сервер запущен", "addr", addr, "driver", cfg.DB.DbDRIVER)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "ошибка запуска сервера", "error", err)
		os.Exit(1)
	}
}
