package models

// Status is the normalized game state used by the classifier and the pipeline.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinal      Status = "final"
	StatusPostponed  Status = "postponed"
	StatusOther      Status = "other"
)

// ScheduleResponse mirrors the MLB Stats API schedule payload
type ScheduleResponse struct {
	TotalGames int            `json:"totalGames"`
	Dates      []ScheduleDate `json:"dates"`
}

// ScheduleDate is one calendar date's slice of the schedule
type ScheduleDate struct {
	Date  string         `json:"date"`
	Games []ScheduleGame `json:"games"`
}

// ScheduleGame is a single game entry from the schedule endpoint
type ScheduleGame struct {
	GamePk       int64  `json:"gamePk"`
	GameDate     string `json:"gameDate"`     // ISO 8601
	OfficialDate string `json:"officialDate"` // YYYY-MM-DD
	Status       struct {
		AbstractGameState string `json:"abstractGameState"`
		CodedGameState    string `json:"codedGameState"`
		DetailedState     string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Away ScheduleTeam `json:"away"`
		Home ScheduleTeam `json:"home"`
	} `json:"teams"`
}

// ScheduleTeam is one side of a scheduled game
type ScheduleTeam struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Score    *int  `json:"score,omitempty"`
	IsWinner *bool `json:"isWinner,omitempty"`
}

// NormalizedStatus maps the API's codedGameState to the internal Status enum.
// Codes per statsapi.mlb.com: S/P pregame, I in progress, F/O final,
// D postponed, C cancelled.
func (sg *ScheduleGame) NormalizedStatus() Status {
	switch sg.Status.CodedGameState {
	case "S", "P":
		return StatusScheduled
	case "I":
		return StatusInProgress
	case "F", "O":
		return StatusFinal
	case "D", "C":
		return StatusPostponed
	default:
		return StatusOther
	}
}

// Game is the merged view the classifier consumes: schedule metadata plus
// the per-inning linescore from the live feed.
type Game struct {
	GamePk    int64
	Date      string // YYYY-MM-DD
	AwayTeam  string
	HomeTeam  string
	Status    Status
	Linescore Linescore

	// Running totals from the schedule; final totals once Status is final.
	AwayScore int
	HomeScore int
}

// MergeGame builds a Game from a schedule entry and its fetched linescore
func MergeGame(sg *ScheduleGame, date string, linescore Linescore) *Game {
	g := &Game{
		GamePk:    sg.GamePk,
		Date:      date,
		AwayTeam:  sg.Teams.Away.Team.Name,
		HomeTeam:  sg.Teams.Home.Team.Name,
		Status:    sg.NormalizedStatus(),
		Linescore: linescore,
	}
	if sg.Teams.Away.Score != nil {
		g.AwayScore = *sg.Teams.Away.Score
	}
	if sg.Teams.Home.Score != nil {
		g.HomeScore = *sg.Teams.Home.Score
	}
	return g
}

// IsFinal returns true if the game is completed
func (g *Game) IsFinal() bool {
	return g.Status == StatusFinal
}
