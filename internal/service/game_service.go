package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vogiaan1904/calorieclash/config"
	kafka "github.com/vogiaan1904/calorieclash/internal/delivery/kafka"
	"github.com/vogiaan1904/calorieclash/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/calorieclash/internal/models"
	repo "github.com/vogiaan1904/calorieclash/internal/repository/redis"
	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

var (
	gameIDPattern = regexp.MustCompile(`^\d{4}$`)
	namePattern   = regexp.MustCompile(`^[A-Za-z]{1,10}$`)
)

// nicknames remaps a few well-known names to display nicknames before the
// roster uniqueness check. Purely cosmetic.
var nicknames = map[string]string{
	"majed":    "Kitten",
	"yun":      "Duck",
	"mohammed": "Monkey",
	"khaled":   "Cat",
}

type GameService interface {
	CreateGame(ctx context.Context, in CreateGameInput) (*CreateGameOutput, error)
	JoinGame(ctx context.Context, gameID, name string) (*JoinGameOutput, error)
	LeaveGame(ctx context.Context, gameID, playerID string) error
	StartGame(ctx context.Context, gameID string, claims *LeaderClaims) (models.GameStatus, error)
	EndGame(ctx context.Context, gameID string) (models.GameStatus, error)
	SubmitScore(ctx context.Context, in SubmitScoreInput) (*SubmitScoreOutput, error)
	Rematch(ctx context.Context, gameID string, claims *LeaderClaims) (*models.Projection, error)
}

type gameService struct {
	sessions repo.SessionRepository
	catalog  repo.CatalogRepository
	locker   repo.SessionLocker
	tokens   TokenService
	prod     producer.Producer
	cfg      config.GameConfig
	l        logger.Logger
}

func NewGameService(
	sessions repo.SessionRepository,
	catalog repo.CatalogRepository,
	locker repo.SessionLocker,
	tokens TokenService,
	prod producer.Producer,
	cfg config.GameConfig,
	l logger.Logger,
) GameService {
	return &gameService{
		sessions: sessions,
		catalog:  catalog,
		locker:   locker,
		tokens:   tokens,
		prod:     prod,
		cfg:      cfg,
		l:        l,
	}
}

func (s *gameService) CreateGame(ctx context.Context, in CreateGameInput) (*CreateGameOutput, error) {
	if !gameIDPattern.MatchString(in.GameID) {
		return nil, fmt.Errorf("%w: game id should be exactly 4 digits", ErrInvalidInput)
	}
	if in.CaloriesGoal <= 0 {
		return nil, fmt.Errorf("%w: calories goal must be a positive number", ErrInvalidInput)
	}
	if in.TimerSec <= 0 {
		return nil, fmt.Errorf("%w: timer must be a positive number", ErrInvalidInput)
	}
	if !namePattern.MatchString(in.Name) {
		return nil, fmt.Errorf("%w: name length must be 1-10 with no special characters", ErrInvalidInput)
	}

	items, err := s.catalog.Draw(ctx, s.cfg.CatalogSize)
	if err != nil {
		s.l.Errorf(ctx, "gameService.CreateGame: %v (game_id=%s)", err, in.GameID)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	leaderID := uuid.New().String()
	now := time.Now()

	ss := &models.GameSession{
		GameID:       in.GameID,
		LeaderID:     leaderID,
		Players:      []models.Player{{PlayerID: leaderID, Name: in.Name}},
		Catalog:      items,
		Submissions:  map[string][]*models.PickedItem{},
		Status:       models.GameStatusWaiting,
		CaloriesGoal: in.CaloriesGoal,
		TimerSec:     in.TimerSec,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.sessions.Create(ctx, ss); err != nil {
		if !errors.Is(err, repo.ErrAlreadyExists) {
			return nil, err
		}
		if err := s.reclaimAndCreate(ctx, ss); err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.IssueLeaderToken(ctx, leaderID, in.GameID)
	if err != nil {
		return nil, err
	}

	if s.prod != nil {
		if err := s.prod.PublishGameCreated(ctx, kafka.GameCreatedEvent{
			GameID:       ss.GameID,
			LeaderName:   in.Name,
			CaloriesGoal: ss.CaloriesGoal,
			TimerSec:     ss.TimerSec,
		}); err != nil {
			s.l.Errorf(ctx, "gameService.CreateGame: %v", err)
		}
	}

	s.l.Infof(ctx, "game created: game_id=%s leader=%s", ss.GameID, in.Name)

	return &CreateGameOutput{
		Game:     ss.Project(true),
		LeaderID: leaderID,
		Token:    token,
	}, nil
}

// reclaimAndCreate frees a finished session occupying the requested id and
// writes the new one in its place. An active session on the id is a
// conflict. The per-session lock serializes concurrent reclaims so a slower
// caller cannot delete the session a faster caller just created.
func (s *gameService) reclaimAndCreate(ctx context.Context, ss *models.GameSession) error {
	token, err := s.acquireLock(ctx, ss.GameID)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.locker.Release(ctx, ss.GameID, token); err != nil {
			s.l.Errorf(ctx, "gameService.reclaimAndCreate: %v (game_id=%s)", err, ss.GameID)
		}
	}()

	existing, _, err := s.sessions.Get(ctx, ss.GameID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// Freed while we waited for the lock; fall through to create.
	case err != nil:
		return err
	default:
		if existing.Status != models.GameStatusFinished {
			return ErrGameExists
		}
		if err := s.sessions.Delete(ctx, ss.GameID); err != nil {
			return err
		}
	}

	if err := s.sessions.Create(ctx, ss); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return ErrGameExists
		}
		return err
	}

	return nil
}

func (s *gameService) JoinGame(ctx context.Context, gameID, name string) (*JoinGameOutput, error) {
	if !gameIDPattern.MatchString(gameID) {
		return nil, fmt.Errorf("%w: game id should be exactly 4 digits", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if nick, ok := nicknames[strings.ToLower(name)]; ok {
		name = nick
	}

	playerID := uuid.New().String()

	var joined *models.GameSession
	ss, err := s.updateWithRetry(ctx, gameID, func(ss *models.GameSession) error {
		if !ss.IsJoinable() {
			return ErrGameNotOpen
		}
		if len(ss.Players) >= s.cfg.MaxPlayers {
			return ErrPartyFull
		}
		if ss.HasPlayerName(name) {
			return ErrNameTaken
		}

		ss.Players = append(ss.Players, models.Player{PlayerID: playerID, Name: name})
		joined = ss
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.prod != nil && joined != nil {
		if err := s.prod.PublishPlayerJoined(ctx, kafka.PlayerJoinedEvent{
			GameID:      gameID,
			PlayerID:    playerID,
			Name:        name,
			PlayerCount: len(ss.Players),
		}); err != nil {
			s.l.Errorf(ctx, "gameService.JoinGame: %v", err)
		}
	}

	s.l.Infof(ctx, "player joined: game_id=%s name=%s", gameID, name)

	return &JoinGameOutput{
		Game:     ss.Project(false),
		PlayerID: playerID,
	}, nil
}

func (s *gameService) LeaveGame(ctx context.Context, gameID, playerID string) error {
	removed := false
	ss, err := s.updateWithRetry(ctx, gameID, func(ss *models.GameSession) error {
		kept := ss.Players[:0:0]
		for _, p := range ss.Players {
			if p.PlayerID == playerID {
				removed = true
				continue
			}
			kept = append(kept, p)
		}

		if !removed {
			// Duplicate leave calls are tolerated.
			return errNoUpdate
		}

		ss.Players = kept
		return nil
	})
	if err != nil {
		return err
	}

	if removed {
		if s.prod != nil {
			if err := s.prod.PublishPlayerLeft(ctx, kafka.PlayerLeftEvent{
				GameID:      gameID,
				PlayerID:    playerID,
				PlayerCount: len(ss.Players),
			}); err != nil {
				s.l.Errorf(ctx, "gameService.LeaveGame: %v", err)
			}
		}

		s.l.Infof(ctx, "player left: game_id=%s player_id=%s", gameID, playerID)
	}

	return nil
}

func (s *gameService) StartGame(ctx context.Context, gameID string, claims *LeaderClaims) (models.GameStatus, error) {
	started := false
	ss, err := s.updateWithRetry(ctx, gameID, func(ss *models.GameSession) error {
		if err := s.requireLeader(ss, claims); err != nil {
			return err
		}
		if ss.Status != models.GameStatusWaiting {
			return ErrGameNotOpen
		}

		// No minimum player count: solo practice rounds are allowed.
		ss.Status = models.GameStatusStarted
		started = true
		return nil
	})
	if err != nil {
		return "", err
	}

	if started && s.prod != nil {
		if err := s.prod.PublishGameStarted(ctx, kafka.GameStartedEvent{
			GameID:      gameID,
			PlayerCount: len(ss.Players),
		}); err != nil {
			s.l.Errorf(ctx, "gameService.StartGame: %v", err)
		}
	}

	s.l.Infof(ctx, "game started: game_id=%s players=%d", gameID, len(ss.Players))

	return ss.Status, nil
}

func (s *gameService) EndGame(ctx context.Context, gameID string) (models.GameStatus, error) {
	ended := false
	ss, err := s.updateWithRetry(ctx, gameID, func(ss *models.GameSession) error {
		if ss.Status == models.GameStatusFinished {
			return errNoUpdate
		}

		ss.Status = models.GameStatusFinished
		ended = true
		return nil
	})
	if err != nil {
		return "", err
	}

	if ended && s.prod != nil {
		if err := s.prod.PublishGameEnded(ctx, kafka.GameEndedEvent{GameID: gameID}); err != nil {
			s.l.Errorf(ctx, "gameService.EndGame: %v", err)
		}
	}

	s.l.Infof(ctx, "game ended: game_id=%s", gameID)

	return ss.Status, nil
}

func (s *gameService) Rematch(ctx context.Context, gameID string, claims *LeaderClaims) (*models.Projection, error) {
	if !gameIDPattern.MatchString(gameID) {
		return nil, fmt.Errorf("%w: game id should be exactly 4 digits", ErrInvalidInput)
	}

	// The catalog redraw is an external call, so CAS on the document alone
	// cannot stop two concurrent rematches from both drawing. Hold the
	// per-session lock across draw + reset.
	token, err := s.acquireLock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(ctx, gameID, token); err != nil {
			s.l.Errorf(ctx, "gameService.Rematch: %v", err)
		}
	}()

	current, _, err := s.sessions.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if err := s.requireLeader(current, claims); err != nil {
		return nil, err
	}

	items, err := s.catalog.Draw(ctx, s.cfg.CatalogSize)
	if err != nil {
		s.l.Errorf(ctx, "gameService.Rematch: %v (game_id=%s)", err, gameID)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	ss, err := s.updateWithRetry(ctx, gameID, func(ss *models.GameSession) error {
		if err := s.requireLeader(ss, claims); err != nil {
			return err
		}

		ss.Catalog = items
		ss.Submissions = map[string][]*models.PickedItem{}
		ss.WinnerScores = nil
		ss.Status = models.GameStatusWaiting
		// Counting inside the conditional write keeps the counter gapless
		// when a rematch attempt fails.
		ss.RematchCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.prod != nil {
		if err := s.prod.PublishGameRematched(ctx, kafka.GameRematchedEvent{
			GameID:       gameID,
			RematchCount: ss.RematchCount,
		}); err != nil {
			s.l.Errorf(ctx, "gameService.Rematch: %v", err)
		}
	}

	s.l.Infof(ctx, "game rematched: game_id=%s count=%d", gameID, ss.RematchCount)

	proj := ss.Project(true)
	return &proj, nil
}

func (s *gameService) requireLeader(ss *models.GameSession, claims *LeaderClaims) error {
	if claims == nil {
		return ErrTokenMissing
	}
	if claims.GameID != ss.GameID || claims.LeaderID != ss.LeaderID {
		return ErrNotLeader
	}
	return nil
}

func (s *gameService) acquireLock(ctx context.Context, gameID string) (string, error) {
	for attempt := 0; attempt < s.cfg.LockRetryMax; attempt++ {
		token, ok, err := s.locker.Acquire(ctx, gameID)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.cfg.LockRetryDelay):
		}
	}

	return "", ErrContention
}

// errNoUpdate signals that the mutation decided the current document is
// already in the desired state; the cycle ends without a write.
var errNoUpdate = errors.New("no update required")

// updateWithRetry runs one read-modify-write cycle against the session
// document and retries on version conflicts, so concurrent mutations of the
// same session serialize instead of losing updates. The returned session is
// the state that was written (or observed, for errNoUpdate mutations).
func (s *gameService) updateWithRetry(ctx context.Context, gameID string, mutate func(ss *models.GameSession) error) (*models.GameSession, error) {
	for attempt := 0; attempt < s.cfg.UpdateRetryMax; attempt++ {
		ss, ver, err := s.sessions.Get(ctx, gameID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, err
		}

		if err := mutate(ss); err != nil {
			if errors.Is(err, errNoUpdate) {
				return ss, nil
			}
			return nil, err
		}

		ok, err := s.sessions.UpdateIf(ctx, ss, ver)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, err
		}
		if ok {
			return ss, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}

	s.l.Warnf(ctx, "gameService.updateWithRetry: %v (game_id=%s)", ErrContention, gameID)

	return nil, ErrContention
}
