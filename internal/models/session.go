package models

import (
	"encoding/json"
	"time"
)

type GameStatus string

const (
	GameStatusWaiting  GameStatus = "WAITING"
	GameStatusStarted  GameStatus = "STARTED"
	GameStatusFinished GameStatus = "FINISHED"
)

// Player is one roster entry. Names are unique within a session.
type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// CatalogItem is a single scorable item drawn from the catalog pool.
type CatalogItem struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// PickedItem is one slot of a player's submission. A nil entry in the
// submission list means the slot was never filled and scores zero.
type PickedItem struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts both the object form {"name":"X"} and the bare
// string form "X" that some clients send for a forfeited slot.
func (p *PickedItem) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		return nil
	}

	type pickedItem PickedItem
	var item pickedItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}

	*p = PickedItem(item)
	return nil
}

// GameSession is the persisted session document, keyed by GameID.
type GameSession struct {
	GameID          string                   `json:"game_id"`
	LeaderID        string                   `json:"leader_id"`
	Players         []Player                 `json:"players"`
	OriginalPlayers []Player                 `json:"original_players,omitempty"`
	Catalog         []CatalogItem            `json:"food_items"`
	Submissions     map[string][]*PickedItem `json:"selected_items"`
	Status          GameStatus               `json:"game_status"`
	CaloriesGoal    int                      `json:"calories_goal"`
	TimerSec        int                      `json:"timer"`
	WinnerScores    map[string]int           `json:"winner,omitempty"`
	RematchCount    int64                    `json:"rematch_counter"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func (s *GameSession) IsJoinable() bool {
	return s.Status == GameStatusWaiting
}

func (s *GameSession) IsScored() bool {
	return len(s.WinnerScores) > 0
}

// HasPlayer reports whether playerID is on the current roster.
func (s *GameSession) HasPlayer(playerID string) bool {
	for _, p := range s.Players {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// HasPlayerName reports whether a roster entry already uses name.
// Comparison is exact-match on the stored display name.
func (s *GameSession) HasPlayerName(name string) bool {
	for _, p := range s.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// SubmissionsComplete reports whether every current player has submitted.
func (s *GameSession) SubmissionsComplete() bool {
	return len(s.Submissions) >= len(s.Players)
}

// Projection is the caller-facing view of a session. Join responses strip
// the leader id so non-leader clients cannot impersonate the leader.
type Projection struct {
	GameID          string                   `json:"game_id"`
	LeaderID        string                   `json:"leader_id,omitempty"`
	Players         []Player                 `json:"players"`
	OriginalPlayers []Player                 `json:"original_players,omitempty"`
	Catalog         []CatalogItem            `json:"food_items"`
	Submissions     map[string][]*PickedItem `json:"selected_items"`
	Status          GameStatus               `json:"game_status"`
	CaloriesGoal    int                      `json:"calories_goal"`
	TimerSec        int                      `json:"timer"`
	WinnerScores    map[string]int           `json:"winner,omitempty"`
	RematchCount    int64                    `json:"rematch_counter"`
}

// Project builds a caller-facing view. When withLeader is false the
// leader id is omitted.
func (s *GameSession) Project(withLeader bool) Projection {
	p := Projection{
		GameID:          s.GameID,
		Players:         s.Players,
		OriginalPlayers: s.OriginalPlayers,
		Catalog:         s.Catalog,
		Submissions:     s.Submissions,
		Status:          s.Status,
		CaloriesGoal:    s.CaloriesGoal,
		TimerSec:        s.TimerSec,
		WinnerScores:    s.WinnerScores,
		RematchCount:    s.RematchCount,
	}
	if withLeader {
		p.LeaderID = s.LeaderID
	}
	return p
}
