package http

import (
	"errors"
	"net/http"

	"github.com/vogiaan1904/calorieclash/internal/service"
)

// mapServiceError translates domain failures into caller-facing statuses.
// Validation keeps its message so the caller learns the violated constraint.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound, "Game not found."
	case errors.Is(err, service.ErrPlayerUnknown):
		return http.StatusNotFound, "Player is not part of this game."
	case errors.Is(err, service.ErrGameExists):
		return http.StatusConflict, "A game with this id already exists."
	case errors.Is(err, service.ErrGameNotOpen):
		return http.StatusConflict, "Sorry, but the game is either in progress or has ended. Play another!"
	case errors.Is(err, service.ErrPartyFull):
		return http.StatusConflict, "Party is already full. (4 players max)"
	case errors.Is(err, service.ErrNameTaken):
		return http.StatusConflict, "A player with this name already exists"
	case errors.Is(err, service.ErrContention):
		return http.StatusConflict, "The game is busy, please retry."
	case errors.Is(err, service.ErrTokenMissing):
		return http.StatusUnauthorized, "Unauthorized: No token provided"
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized, "Unauthorized: Invalid token"
	case errors.Is(err, service.ErrNotLeader):
		return http.StatusForbidden, "Forbidden: You are not the leader"
	case errors.Is(err, service.ErrCatalogUnavailable):
		return http.StatusBadGateway, "Food catalog is unavailable."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
