package service

import (
	"context"
	"fmt"

	kafka "github.com/vogiaan1904/calorieclash/internal/delivery/kafka"
	"github.com/vogiaan1904/calorieclash/internal/models"
)

// SubmitScore merges one player's picked items into the session. A second
// submission by the same player before the round completes simply replaces
// the first. The submission that completes the roster also snapshots the
// roster and computes the final scores; both land in the same conditional
// write as the merge, so under concurrent final submissions the scores are
// computed exactly once. Submissions arriving after the round is scored
// observe the already-written result without touching the document.
func (s *gameService) SubmitScore(ctx context.Context, in SubmitScoreInput) (*SubmitScoreOutput, error) {
	if !gameIDPattern.MatchString(in.GameID) {
		return nil, fmt.Errorf("%w: game id should be exactly 4 digits", ErrInvalidInput)
	}
	if in.PlayerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if in.Items == nil {
		return nil, fmt.Errorf("%w: selected items are required", ErrInvalidInput)
	}

	scoredNow := false
	ss, err := s.updateWithRetry(ctx, in.GameID, func(ss *models.GameSession) error {
		if ss.IsScored() {
			return errNoUpdate
		}
		if ss.Status != models.GameStatusStarted {
			return ErrGameNotOpen
		}
		if !ss.HasPlayer(in.PlayerID) {
			return ErrPlayerUnknown
		}

		if ss.Submissions == nil {
			ss.Submissions = map[string][]*models.PickedItem{}
		}
		ss.Submissions[in.PlayerID] = in.Items

		if ss.SubmissionsComplete() {
			// Snapshot the roster before it can change on rematch.
			ss.OriginalPlayers = append([]models.Player(nil), ss.Players...)
			ss.WinnerScores = ScoreSubmissions(ss.Submissions, ss.Catalog)
			scoredNow = true
		} else {
			scoredNow = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if scoredNow {
		if s.prod != nil {
			if err := s.prod.PublishGameScored(ctx, kafka.GameScoredEvent{
				GameID:       in.GameID,
				WinnerScores: ss.WinnerScores,
				Players:      ss.OriginalPlayers,
			}); err != nil {
				s.l.Errorf(ctx, "gameService.SubmitScore: %v", err)
			}
		}

		s.l.Infof(ctx, "round scored: game_id=%s players=%d", in.GameID, len(ss.WinnerScores))
	}

	out := &SubmitScoreOutput{Game: ss.Project(false)}
	if ss.IsScored() {
		out.WinnerScores = ss.WinnerScores
	}
	return out, nil
}
