package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vogiaan1904/calorieclash/config"
	"github.com/vogiaan1904/calorieclash/internal/models"
	"github.com/vogiaan1904/calorieclash/internal/service"
	pkgLog "github.com/vogiaan1904/calorieclash/pkg/logger"
)

// stubGameService returns canned results so the tests exercise decoding,
// status mapping and the leader middleware without a real backend.
type stubGameService struct {
	createOut *service.CreateGameOutput
	joinOut   *service.JoinGameOutput
	submitOut *service.SubmitScoreOutput
	rematch   *models.Projection
	status    models.GameStatus
	err       error

	lastClaims *service.LeaderClaims
}

func (s *stubGameService) CreateGame(ctx context.Context, in service.CreateGameInput) (*service.CreateGameOutput, error) {
	return s.createOut, s.err
}

func (s *stubGameService) JoinGame(ctx context.Context, gameID, name string) (*service.JoinGameOutput, error) {
	return s.joinOut, s.err
}

func (s *stubGameService) LeaveGame(ctx context.Context, gameID, playerID string) error {
	return s.err
}

func (s *stubGameService) StartGame(ctx context.Context, gameID string, claims *service.LeaderClaims) (models.GameStatus, error) {
	s.lastClaims = claims
	return s.status, s.err
}

func (s *stubGameService) EndGame(ctx context.Context, gameID string) (models.GameStatus, error) {
	return s.status, s.err
}

func (s *stubGameService) SubmitScore(ctx context.Context, in service.SubmitScoreInput) (*service.SubmitScoreOutput, error) {
	return s.submitOut, s.err
}

func (s *stubGameService) Rematch(ctx context.Context, gameID string, claims *service.LeaderClaims) (*models.Projection, error) {
	s.lastClaims = claims
	return s.rematch, s.err
}

func newTestHandler(svc *stubGameService) (*GameHandler, service.TokenService) {
	l := pkgLog.InitializeTestZapLogger()
	tokens := service.NewTokenService(config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}, l)
	return NewGameHandler(svc, tokens, l), tokens
}

func doRequest(t *testing.T, h *GameHandler, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{})

	rec := doRequest(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "healthy" {
		t.Fatalf("expected healthy, got %v", got)
	}
}

func TestCreateGameResponse(t *testing.T) {
	svc := &stubGameService{
		createOut: &service.CreateGameOutput{
			Game: models.Projection{
				GameID:       "1234",
				LeaderID:     "leader-1",
				Players:      []models.Player{{PlayerID: "leader-1", Name: "ann"}},
				Status:       models.GameStatusWaiting,
				CaloriesGoal: 500,
				TimerSec:     60,
			},
			LeaderID: "leader-1",
			Token:    "signed-token",
		},
	}
	h, _ := newTestHandler(svc)

	rec := doRequest(t, h, http.MethodPost, "/createGame",
		`{"name":"ann","gameId":"1234","calories":500,"timer":60}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["leaderID"] != "leader-1" {
		t.Fatalf("expected leaderID leader-1, got %v", body["leaderID"])
	}
	if body["token"] != "signed-token" {
		t.Fatalf("expected token in response, got %v", body["token"])
	}
	session, ok := body["gameSession"].(map[string]any)
	if !ok {
		t.Fatalf("expected gameSession object, got %T", body["gameSession"])
	}
	if session["game_id"] != "1234" {
		t.Fatalf("expected game_id 1234, got %v", session["game_id"])
	}
}

func TestCreateGameBadBody(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{})

	rec := doRequest(t, h, http.MethodPost, "/createGame", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateGameValidationFailure(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{})

	// Missing calories and timer.
	rec := doRequest(t, h, http.MethodPost, "/createGame",
		`{"name":"ann","gameId":"1234"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	msg, _ := decodeBody(t, rec)["error"].(string)
	if !strings.HasPrefix(msg, "Validation failed") {
		t.Fatalf("expected validation message, got %q", msg)
	}
}

func TestServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"not found", service.ErrGameNotFound, http.StatusNotFound},
		{"player unknown", service.ErrPlayerUnknown, http.StatusNotFound},
		{"game exists", service.ErrGameExists, http.StatusConflict},
		{"not open", service.ErrGameNotOpen, http.StatusConflict},
		{"party full", service.ErrPartyFull, http.StatusConflict},
		{"name taken", service.ErrNameTaken, http.StatusConflict},
		{"contention", service.ErrContention, http.StatusConflict},
		{"catalog down", service.ErrCatalogUnavailable, http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandler(&stubGameService{err: tc.err})

			rec := doRequest(t, h, http.MethodPost, "/joinGame",
				`{"gameId":"1234","name":"ben"}`, nil)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestPartyFullMessage(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{err: service.ErrPartyFull})

	rec := doRequest(t, h, http.MethodPost, "/joinGame",
		`{"gameId":"1234","name":"ben"}`, nil)
	if got := decodeBody(t, rec)["error"]; got != "Party is already full. (4 players max)" {
		t.Fatalf("unexpected message: %v", got)
	}
}

func TestStartGameNoToken(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{status: models.GameStatusStarted})

	rec := doRequest(t, h, http.MethodPost, "/startGame",
		`{"game_id":"1234"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestStartGameInvalidToken(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{status: models.GameStatusStarted})

	rec := doRequest(t, h, http.MethodPost, "/startGame",
		`{"game_id":"1234"}`, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "leaderSession", Value: "bogus"})
		})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestStartGameCookieToken(t *testing.T) {
	svc := &stubGameService{status: models.GameStatusStarted}
	h, tokens := newTestHandler(svc)

	token, err := tokens.IssueLeaderToken(context.Background(), "leader-1", "1234")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, h, http.MethodPost, "/startGame",
		`{"game_id":"1234"}`, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "leaderSession", Value: token})
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastClaims == nil || svc.lastClaims.LeaderID != "leader-1" {
		t.Fatalf("expected leader claims passed through, got %+v", svc.lastClaims)
	}
	if got := decodeBody(t, rec)["gameStatus"]; got != string(models.GameStatusStarted) {
		t.Fatalf("expected started status, got %v", got)
	}
}

func TestStartGameBodyToken(t *testing.T) {
	svc := &stubGameService{status: models.GameStatusStarted}
	h, tokens := newTestHandler(svc)

	token, err := tokens.IssueLeaderToken(context.Background(), "leader-1", "1234")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	body, _ := json.Marshal(map[string]string{
		"game_id":       "1234",
		"leaderSession": token,
	})
	rec := doRequest(t, h, http.MethodPost, "/startGame", string(body), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastClaims == nil || svc.lastClaims.GameID != "1234" {
		t.Fatalf("expected claims from body token, got %+v", svc.lastClaims)
	}
}

func TestStartGameNotLeader(t *testing.T) {
	svc := &stubGameService{err: service.ErrNotLeader}
	h, tokens := newTestHandler(svc)

	token, err := tokens.IssueLeaderToken(context.Background(), "leader-1", "9999")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, h, http.MethodPost, "/startGame",
		`{"game_id":"1234"}`, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "leaderSession", Value: token})
		})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRematchResponse(t *testing.T) {
	svc := &stubGameService{
		rematch: &models.Projection{
			GameID:       "1234",
			Status:       models.GameStatusWaiting,
			RematchCount: 1,
		},
	}
	h, tokens := newTestHandler(svc)

	token, err := tokens.IssueLeaderToken(context.Background(), "leader-1", "1234")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, h, http.MethodPost, "/rematch",
		`{"gameId":"1234"}`, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "leaderSession", Value: token})
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	session, ok := decodeBody(t, rec)["gameSession"].(map[string]any)
	if !ok {
		t.Fatalf("expected gameSession object")
	}
	if session["rematch_counter"] != float64(1) {
		t.Fatalf("expected rematch_counter 1, got %v", session["rematch_counter"])
	}
}

func TestSubmitScoreResponse(t *testing.T) {
	svc := &stubGameService{
		submitOut: &service.SubmitScoreOutput{
			Game: models.Projection{
				GameID: "1234",
				Status: models.GameStatusStarted,
			},
			WinnerScores: map[string]int{"p1": 480, "p2": 510},
		},
	}
	h, _ := newTestHandler(svc)

	rec := doRequest(t, h, http.MethodPost, "/submitScore",
		`{"game_id":"1234","player_id":"p1","selected_items":[{"name":"Salad"}]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	winner, ok := body["winner"].(map[string]any)
	if !ok {
		t.Fatalf("expected winner map, got %T", body["winner"])
	}
	if winner["p1"] != float64(480) {
		t.Fatalf("expected p1 score 480, got %v", winner["p1"])
	}
}

func TestLeaveGameResponse(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{})

	rec := doRequest(t, h, http.MethodPost, "/leaveGame",
		`{"game_id":"1234","player":{"player_id":"p1"}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["message"]; got != "Player removed successfully." {
		t.Fatalf("unexpected message: %v", got)
	}
}

func TestEndGameResponse(t *testing.T) {
	h, _ := newTestHandler(&stubGameService{status: models.GameStatusFinished})

	rec := doRequest(t, h, http.MethodPost, "/endGame", `{"game_id":"1234"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["gameStatus"]; got != string(models.GameStatusFinished) {
		t.Fatalf("expected finished, got %v", got)
	}
}
