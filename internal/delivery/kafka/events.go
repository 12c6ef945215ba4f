package kafka

import (
	"time"

	"github.com/vogiaan1904/calorieclash/internal/models"
)

// Events published by the game coordinator. Non-leader clients follow the
// session through these instead of polling.

const (
	TopicGameCreated   = "GAME_CREATED"
	TopicPlayerJoined  = "PLAYER_JOINED"
	TopicPlayerLeft    = "PLAYER_LEFT"
	TopicGameStarted   = "GAME_STARTED"
	TopicGameEnded     = "GAME_ENDED"
	TopicGameScored    = "GAME_SCORED"
	TopicGameRematched = "GAME_REMATCHED"
)

type GameCreatedEvent struct {
	GameID       string    `json:"game_id"`
	LeaderName   string    `json:"leader_name"`
	CaloriesGoal int       `json:"calories_goal"`
	TimerSec     int       `json:"timer"`
	Timestamp    time.Time `json:"timestamp"`
}

type PlayerJoinedEvent struct {
	GameID      string    `json:"game_id"`
	PlayerID    string    `json:"player_id"`
	Name        string    `json:"name"`
	PlayerCount int       `json:"player_count"`
	Timestamp   time.Time `json:"timestamp"`
}

type PlayerLeftEvent struct {
	GameID      string    `json:"game_id"`
	PlayerID    string    `json:"player_id"`
	PlayerCount int       `json:"player_count"`
	Timestamp   time.Time `json:"timestamp"`
}

type GameStartedEvent struct {
	GameID      string    `json:"game_id"`
	PlayerCount int       `json:"player_count"`
	Timestamp   time.Time `json:"timestamp"`
}

type GameEndedEvent struct {
	GameID    string    `json:"game_id"`
	Timestamp time.Time `json:"timestamp"`
}

type GameScoredEvent struct {
	GameID       string          `json:"game_id"`
	WinnerScores map[string]int  `json:"winner_scores"`
	Players      []models.Player `json:"players"`
	Timestamp    time.Time       `json:"timestamp"`
}

type GameRematchedEvent struct {
	GameID       string    `json:"game_id"`
	RematchCount int64     `json:"rematch_counter"`
	Timestamp    time.Time `json:"timestamp"`
}
