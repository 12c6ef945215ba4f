package service

import "github.com/vogiaan1904/calorieclash/internal/models"

type CreateGameInput struct {
	GameID       string
	Name         string
	CaloriesGoal int
	TimerSec     int
}

type CreateGameOutput struct {
	Game     models.Projection
	LeaderID string
	Token    string
}

type JoinGameOutput struct {
	Game     models.Projection
	PlayerID string
}

type SubmitScoreInput struct {
	GameID   string
	PlayerID string
	Items    []*models.PickedItem
}

type SubmitScoreOutput struct {
	Game models.Projection
	// WinnerScores is nil until the round has been scored.
	WinnerScores map[string]int
}
