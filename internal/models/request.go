package models

// Request bodies for the coordinator's HTTP operations. Field names match
// the wire contract the game clients already speak.

type CreateGameRequest struct {
	Name     string `json:"name" validate:"required"`
	GameID   string `json:"gameId" validate:"required"`
	Calories int    `json:"calories" validate:"required,gt=0"`
	Timer    int    `json:"timer" validate:"required,gt=0"`
}

type JoinGameRequest struct {
	GameID string `json:"gameId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type StartGameRequest struct {
	GameID        string `json:"game_id" validate:"required"`
	LeaderSession string `json:"leaderSession,omitempty"`
}

type EndGameRequest struct {
	GameID string `json:"game_id" validate:"required"`
}

type SubmitScoreRequest struct {
	GameID        string        `json:"game_id" validate:"required"`
	PlayerID      string        `json:"player_id" validate:"required"`
	SelectedItems []*PickedItem `json:"selected_items" validate:"required"`
}

type LeaveGameRequest struct {
	GameID string      `json:"game_id" validate:"required"`
	Player LeavePlayer `json:"player" validate:"required"`
}

type LeavePlayer struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type RematchRequest struct {
	GameID        string `json:"gameId" validate:"required"`
	LeaderSession string `json:"leaderSession,omitempty"`
}
