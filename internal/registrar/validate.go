package registrar

import (
	"fmt"

	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/stats"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", club.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validate checks everything that can be checked without touching the store.
func validate(req MatchRequest) (validated, error) {
	var v validated
	switch {
	case req.User1ID == nil:
		return v, invalid("user1_id is required")
	case req.User2ID == nil:
		return v, invalid("user2_id is required")
	case req.User1Score == nil:
		return v, invalid("user1_score is required")
	case req.User2Score == nil:
		return v, invalid("user2_score is required")
	case req.InputUserID == nil:
		return v, invalid("input_userid is required")
	}

	v = validated{
		user1ID:     *req.User1ID,
		user2ID:     *req.User2ID,
		inputUserID: *req.InputUserID,
		score1:      *req.User1Score,
		score2:      *req.User2Score,
	}
	switch {
	case v.user1ID <= 0:
		return v, invalid("user1_id must be a positive id, got %d", v.user1ID)
	case v.user2ID <= 0:
		return v, invalid("user2_id must be a positive id, got %d", v.user2ID)
	case v.inputUserID <= 0:
		return v, invalid("input_userid must be a positive id, got %d", v.inputUserID)
	case v.user1ID == v.user2ID:
		return v, invalid("a user cannot play against themselves (user %d)", v.user1ID)
	case v.score1 < 0:
		return v, invalid("user1_score must not be negative, got %d", v.score1)
	case v.score2 < 0:
		return v, invalid("user2_score must not be negative, got %d", v.score2)
	case v.score1 > stats.MaxScore:
		return v, invalid("user1_score must not exceed %d, got %d", stats.MaxScore, v.score1)
	case v.score2 > stats.MaxScore:
		return v, invalid("user2_score must not exceed %d, got %d", stats.MaxScore, v.score2)
	}
	return v, nil
}
