package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gxbrielaramalho/MeuMercado/internal/advisor"
	"github.com/gxbrielaramalho/MeuMercado/internal/config"
	"github.com/gxbrielaramalho/MeuMercado/internal/httpx"
	"github.com/gxbrielaramalho/MeuMercado/internal/market"
	"github.com/gxbrielaramalho/MeuMercado/internal/scanner"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	// single in-memory store for the whole process; state is volatile
	// and session-scoped by design
	store := market.NewStore()
	adv := advisor.New(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, log)
	scn := scanner.New(store)

	router := httpx.NewRouter()
	mh := &httpx.MarketHandler{
		Store:   store,
		Advisor: adv,
		Scanner: scn,
		Log:     log,
	}
	mh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
