package nakama

const (
	// RpcCreateLobby is the Nakama RPC id clients call to open a new lobby match.
	RpcCreateLobby = "create_lobby"

	// RpcFindLobby resolves a game code to its match id.
	RpcFindLobby = "find_lobby"

	// MatchNameLobby is the authoritative match handler name registered with Nakama.
	MatchNameLobby = "fivehundred_lobby"

	// GameLabel tags every lobby match label.
	GameLabel = "fivehundred"
)

// Op codes for match data.
const (
	// Client -> Server update envelope
	OpUpdate int64 = 1

	// Server -> Client connect-result, state and alert messages
	OpServer int64 = 100
)

const (
	tickRate = 1
	// emptyTimeoutTicks ends a match nobody joined.
	emptyTimeoutTicks = 60
	maxSeats          = 4
)
