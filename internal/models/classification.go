package models

import (
	"database/sql"
	"time"
)

// Classification is one row of the mlb_blowouts table, keyed by game_id.
// Through6Lead and MaintainedLead use sql.Null* because both are undefined
// until enough of the game has been played: the lead needs six innings of
// linescore data, the maintained flag needs a decisive final.
type Classification struct {
	GameID    int64  `db:"game_id"`
	Date      string `db:"date"` // YYYY-MM-DD
	AwayTeam  string `db:"away_team"`
	HomeTeam  string `db:"home_team"`
	AwayScore int    `db:"away_score"`
	HomeScore int    `db:"home_score"`
	Status    Status `db:"status"`

	// Signed lead through six innings, positive favors away.
	Through6Lead   sql.NullInt32 `db:"through_6_lead"`
	IsBlowout      bool          `db:"is_blowout"`
	MaintainedLead sql.NullBool  `db:"maintained_lead"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Terminal reports whether the record will never change again. Final games
// are terminal whether or not a lead existed to maintain.
func (c *Classification) Terminal() bool {
	return c.Status == StatusFinal
}
