// Command lobbyd serves five hundred lobbies over websockets.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"fivehundred/internal/app"
	"fivehundred/internal/bot"
	"fivehundred/internal/config"
	"fivehundred/internal/ports/ws"
	"fivehundred/internal/rules/practice"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	srv, err := config.ParseEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid environment")
	}
	flag.StringVar(&srv.Addr, "addr", srv.Addr, "listen address")
	flag.StringVar(&srv.ConfigPath, "config", srv.ConfigPath, "lobby config JSON file")
	flag.StringVar(&srv.LogLevel, "log-level", srv.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(srv.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", srv.LogLevel).Msg("unknown log level, keeping default")
	}

	lobby, err := config.LoadLobby(srv.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load lobby config")
	}
	lobby = srv.Apply(lobby)
	level, err := bot.ParseLevel(lobby.BotLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid bot level")
	}

	logger := log.Logger
	registry, err := app.NewRegistry(app.Options{
		Factory:  practice.NewFactory(time.Now().UnixNano()),
		BotLevel: level,
		Tuning:   bot.Tuning{PassWeight: lobby.BotPassWeight},
		BotNames: lobby.BotNames,
		BotDelay: lobby.BotDelay(),
		Logger:   &logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build registry")
	}
	defer registry.Close()

	handler := ws.NewServer(registry, ws.WithOrigins(srv.AllowedOrigins), ws.WithLogger(logger)).Routes()
	httpSrv := &http.Server{
		Addr:              srv.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Dur("bot_delay", lobby.BotDelay()).Msg("starting lobbyd")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}
}
