package club

import (
	"time"

	"github.com/mauv0809/scorekeeper/internal/database"
	"github.com/mauv0809/scorekeeper/internal/stats"
)

// store handles all database operations for the club.
type store struct {
	db *database.DB
}

// User is a registered player together with their running record.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
	stats.Record
	// Version is bumped on every stats write and guards against lost updates.
	Version int64 `json:"-"`
}

// Match is an immutable head-to-head result.
type Match struct {
	ID          int64     `json:"id"`
	User1ID     int64     `json:"user1_id"`
	User2ID     int64     `json:"user2_id"`
	Date        time.Time `json:"date"`
	User1Score  int       `json:"user1_score"`
	User2Score  int       `json:"user2_score"`
	InputUserID int64     `json:"input_userid"`
}
