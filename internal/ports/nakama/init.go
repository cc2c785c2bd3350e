package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fivehundred/internal/app"
	"fivehundred/internal/bot"
	"fivehundred/internal/config"
	"fivehundred/internal/rules/practice"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	vars, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	registry, err := newRegistry(vars, logger)
	if err != nil {
		return err
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameLobby, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(registry), nil
	}); err != nil {
		return err
	}

	logger.Info("Five hundred lobby module loaded.")
	return nil
}

// newRegistry builds the registry shared by every lobby match from the runtime env.
func newRegistry(vars map[string]string, logger runtime.Logger) (*app.Registry, error) {
	srv, err := config.ParseEnvMap(vars)
	if err != nil {
		return nil, err
	}
	lobby, err := config.LoadLobby(srv.ConfigPath)
	if err != nil {
		return nil, err
	}
	lobby = srv.Apply(lobby)
	level, err := bot.ParseLevel(lobby.BotLevel)
	if err != nil {
		return nil, fmt.Errorf("lobby config: %w", err)
	}

	zl := zerolog.New(runtimeWriter{logger}).With().Timestamp().Logger()
	return app.NewRegistry(app.Options{
		Factory:  practice.NewFactory(time.Now().UnixNano()),
		BotLevel: level,
		Tuning:   bot.Tuning{PassWeight: lobby.BotPassWeight},
		BotNames: lobby.BotNames,
		BotDelay: lobby.BotDelay(),
		Logger:   &zl,
	})
}
