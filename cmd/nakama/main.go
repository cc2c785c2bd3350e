// Command nakama is the five hundred lobby built as a Nakama Go plugin:
//
//	go build -buildmode=plugin -trimpath -o fivehundred.so ./cmd/nakama
package main

import (
	"context"
	"database/sql"

	"fivehundred/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule is looked up by the Nakama runtime when the plugin loads.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := nakama.InitModule(ctx, logger, db, nk, initializer); err != nil {
		logger.Error("Five hundred lobby module failed to load: %v", err)
		return err
	}
	return nil
}

// main is unused when built with -buildmode=plugin; it lets `go build ./...` link the package.
func main() {}
