package service

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("a game with this id already exists")
	ErrGameNotOpen   = errors.New("game is either in progress or has ended")
	ErrPartyFull     = errors.New("party is already full")
	ErrNameTaken     = errors.New("a player with this name already exists")
	ErrPlayerUnknown = errors.New("player is not part of this game")

	ErrTokenMissing = errors.New("no leader token provided")
	ErrTokenInvalid = errors.New("leader token is invalid")
	ErrNotLeader    = errors.New("caller is not the leader of this game")

	ErrContention = errors.New("too many concurrent updates, please retry")

	ErrCatalogUnavailable = errors.New("food catalog is unavailable")
)
