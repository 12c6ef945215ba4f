package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vogiaan1904/calorieclash/internal/models"
	"github.com/vogiaan1904/calorieclash/internal/service"
	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

type GameHandler struct {
	gameService  service.GameService
	tokenService service.TokenService
	logger       logger.Logger
	validator    *validator.Validate
}

func NewGameHandler(gameService service.GameService, tokenService service.TokenService, logger logger.Logger) *GameHandler {
	return &GameHandler{
		gameService:  gameService,
		tokenService: tokenService,
		logger:       logger,
		validator:    validator.New(),
	}
}

// Routes mounts every game operation. Leader-only operations sit behind the
// leader session middleware.
func (h *GameHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)

	r.Post("/createGame", h.CreateGame)
	r.Post("/joinGame", h.JoinGame)
	r.Post("/endGame", h.EndGame)
	r.Post("/submitScore", h.SubmitScore)
	r.Post("/leaveGame", h.LeaveGame)

	r.Group(func(r chi.Router) {
		r.Use(h.VerifyLeaderSession)
		r.Post("/startGame", h.StartGame)
		r.Post("/rematch", h.Rematch)
	})

	return r
}

func (h *GameHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "calorieclash-coordinator",
	})
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.gameService.CreateGame(r.Context(), service.CreateGameInput{
		GameID:       req.GameID,
		Name:         req.Name,
		CaloriesGoal: req.Calories,
		TimerSec:     req.Timer,
	})
	if err != nil {
		h.respondServiceError(w, r, "createGame", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{
		"message":     "Game session created successfully",
		"gameSession": out.Game,
		"leaderID":    out.LeaderID,
		"token":       out.Token,
	})
}

func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req models.JoinGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.gameService.JoinGame(r.Context(), req.GameID, req.Name)
	if err != nil {
		h.respondServiceError(w, r, "joinGame", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Player joined the game successfully",
		"gameSession": out.Game,
		"player_id":   out.PlayerID,
	})
}

func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req models.StartGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, err := h.gameService.StartGame(r.Context(), req.GameID, LeaderFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, r, "startGame", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Game started successfully",
		"gameStatus": status,
	})
}

func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	var req models.EndGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, err := h.gameService.EndGame(r.Context(), req.GameID)
	if err != nil {
		h.respondServiceError(w, r, "endGame", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Game ended successfully",
		"gameStatus": status,
	})
}

func (h *GameHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitScoreRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.gameService.SubmitScore(r.Context(), service.SubmitScoreInput{
		GameID:   req.GameID,
		PlayerID: req.PlayerID,
		Items:    req.SelectedItems,
	})
	if err != nil {
		h.respondServiceError(w, r, "submitScore", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Player's items have been submitted successfully",
		"gameSession": out.Game,
		"player_id":   req.PlayerID,
		"winner":      out.WinnerScores,
	})
}

func (h *GameHandler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	var req models.LeaveGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.gameService.LeaveGame(r.Context(), req.GameID, req.Player.PlayerID); err != nil {
		h.respondServiceError(w, r, "leaveGame", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message": "Player removed successfully.",
	})
}

func (h *GameHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	var req models.RematchRequest
	if !h.decode(w, r, &req) {
		return
	}

	game, err := h.gameService.Rematch(r.Context(), req.GameID, LeaderFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, r, "rematch", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Game successfully restarted!",
		"gameSession": game,
	})
}

// Helper functions

func (h *GameHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}

	return true
}

func (h *GameHandler) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := mapServiceError(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf(r.Context(), "http.GameHandler.%s: %v", op, err)
	}
	h.respondError(w, status, msg)
}

func (h *GameHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Errorf(context.Background(), "http.GameHandler.respondJSON: %v", err)
	}
}

func (h *GameHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, map[string]any{
		"error": message,
		"code":  statusCode,
	})
}
