package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Nakama runtime error codes, mirroring gRPC status codes.
const (
	errCodeInvalidArgument = 3
	errCodeNotFound        = 5
)

var (
	errBadPayload  = runtime.NewError("payload must be {\"gamecode\": string}", errCodeInvalidArgument)
	errNoSuchLobby = runtime.NewError("no-such-game", errCodeNotFound)
)

type findLobbyRequest struct {
	Gamecode string `json:"gamecode"`
}

// RegisterRPCs wires the lobby RPCs into Nakama.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateLobby, RpcCreateLobbyMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcFindLobby, RpcFindLobbyMatch)
}

// RpcCreateLobbyMatch creates an empty lobby match. The caller becomes host by
// joining it first.
//
// Payload: Unused.
// Returns: String containing the Match ID.
func RpcCreateLobbyMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	matchId, err := nk.MatchCreate(ctx, MatchNameLobby, nil)
	if err != nil {
		logger.Error("RpcCreateLobby [User:%s]: Failed to create match: %v", userId, err)
		return "", err
	}
	logger.Info("RpcCreateLobby [User:%s]: Created new match %s", userId, matchId)
	return matchId, nil
}

// RpcFindLobbyMatch resolves a game code to the match hosting it.
//
// Payload: {"gamecode": "ABCD1234"}
// Returns: String containing the Match ID.
func RpcFindLobbyMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req findLobbyRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", errBadPayload
	}
	code := strings.ToUpper(strings.TrimSpace(req.Gamecode))
	if code == "" {
		return "", errBadPayload
	}

	// +label.code:X matches the exact code; +label.game keeps other modules' matches out.
	labelQuery := fmt.Sprintf("+label.%s:%s +label.%s:%s", MatchLabelKey_Game, GameLabel, MatchLabelKey_Code, code)
	minSize := 0
	maxSize := maxSeats
	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindLobby [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}
	if len(matches) == 0 {
		logger.Debug("RpcFindLobby [User:%s]: No match for %s", userId, code)
		return "", errNoSuchLobby
	}
	logger.Info("RpcFindLobby [User:%s]: Found match %s for %s", userId, matches[0].MatchId, code)
	return matches[0].MatchId, nil
}
