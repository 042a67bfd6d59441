package stats

import (
	"errors"
	"math"
)

// MaxScore is the largest score a single match may record. It fits the
// narrowest score column of every supported database.
const MaxScore = math.MaxInt32

// ErrOverflow is returned by Apply when a counter would exceed its range.
var ErrOverflow = errors.New("record counter overflow")

// Record holds a player's aggregate counters.
type Record struct {
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	ScoreFor     int `json:"score_for"`
	ScoreAgainst int `json:"score_against"`
}

// Outcome is the result of a match from the first participant's point of view.
type Outcome int

const (
	Tie Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "tie"
	}
}

// Decide returns the outcome for the player who scored score1.
func Decide(score1, score2 int) Outcome {
	switch {
	case score1 > score2:
		return Win
	case score1 < score2:
		return Loss
	default:
		return Tie
	}
}

// Apply returns the records of both participants after a match that ended
// score1 to score2. The inputs are not modified. Ties move neither wins nor
// losses; only the score totals change. If any counter would overflow,
// ErrOverflow is returned together with the unchanged records.
func Apply(r1, r2 Record, score1, score2 int) (Record, Record, error) {
	if !fits(r1.ScoreFor, score1) || !fits(r1.ScoreAgainst, score2) ||
		!fits(r2.ScoreFor, score2) || !fits(r2.ScoreAgainst, score1) {
		return r1, r2, ErrOverflow
	}
	outcome := Decide(score1, score2)
	switch {
	case outcome == Win && (r1.Wins == math.MaxInt32 || r2.Losses == math.MaxInt32),
		outcome == Loss && (r1.Losses == math.MaxInt32 || r2.Wins == math.MaxInt32):
		return r1, r2, ErrOverflow
	}

	r1.ScoreFor += score1
	r1.ScoreAgainst += score2
	r2.ScoreFor += score2
	r2.ScoreAgainst += score1

	switch outcome {
	case Win:
		r1.Wins++
		r2.Losses++
	case Loss:
		r1.Losses++
		r2.Wins++
	}
	return r1, r2, nil
}

// fits reports whether total+add stays within int64.
func fits(total, add int) bool {
	return int64(add) <= math.MaxInt64-int64(total)
}

// Played is the number of decided matches in the record.
func (r Record) Played() int {
	return r.Wins + r.Losses
}
