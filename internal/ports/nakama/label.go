package nakama

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MatchLabelKey_Game      = "game"
	MatchLabelKey_Code      = "code"
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
)

// matchLabel renders the searchable label for a lobby. code is empty until the
// first player joins.
func matchLabel(code string, open int) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_Game:      GameLabel,
		MatchLabelKey_Code:      code,
		MatchLabelKey_OpenSeats: open,
	})
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
