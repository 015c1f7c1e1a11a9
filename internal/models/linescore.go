package models

// Inning holds both halves of one completed inning
type Inning struct {
	Away int
	Home int
}

// Linescore is the ordered per-inning run counts for a game.
// Its length is the number of innings completed so far.
type Linescore []Inning

// AwayRunsThrough sums away runs over innings 1..n
func (ls Linescore) AwayRunsThrough(n int) int {
	total := 0
	for i := 0; i < n && i < len(ls); i++ {
		total += ls[i].Away
	}
	return total
}

// HomeRunsThrough sums home runs over innings 1..n
func (ls Linescore) HomeRunsThrough(n int) int {
	total := 0
	for i := 0; i < n && i < len(ls); i++ {
		total += ls[i].Home
	}
	return total
}

// LiveFeedResponse mirrors the slice of the live feed payload we consume
type LiveFeedResponse struct {
	GamePk   int64 `json:"gamePk"`
	GameData struct {
		Status struct {
			CodedGameState string `json:"codedGameState"`
		} `json:"status"`
	} `json:"gameData"`
	LiveData struct {
		Linescore struct {
			CurrentInning int          `json:"currentInning"`
			InningState   string       `json:"inningState"`
			Innings       []LiveInning `json:"innings"`
		} `json:"linescore"`
	} `json:"liveData"`
}

// LiveInning is one inning from the live feed linescore
type LiveInning struct {
	Num  int `json:"num"`
	Away struct {
		Runs *int `json:"runs,omitempty"`
	} `json:"away"`
	Home struct {
		Runs *int `json:"runs,omitempty"`
	} `json:"home"`
}

// ToLinescore flattens the live feed innings into the internal Linescore,
// keeping completed innings only. The feed lists the current inning as soon
// as it starts; until its bottom half ends it is partial data and must not
// count toward the innings-completed length. Once the game is over every
// listed inning counts, including a home half that was never played
// (walk-off, home team already ahead in the ninth): those runs are zero.
func (lf *LiveFeedResponse) ToLinescore() Linescore {
	innings := lf.LiveData.Linescore.Innings
	over := lf.gameOver()
	ls := make(Linescore, 0, len(innings))
	for _, in := range innings {
		if !over && !lf.inningComplete(in.Num) {
			continue
		}
		var inning Inning
		if in.Away.Runs != nil {
			inning.Away = *in.Away.Runs
		}
		if in.Home.Runs != nil {
			inning.Home = *in.Home.Runs
		}
		ls = append(ls, inning)
	}
	return ls
}

func (lf *LiveFeedResponse) gameOver() bool {
	switch lf.GameData.Status.CodedGameState {
	case "F", "O":
		return true
	}
	return false
}

// inningComplete reports whether inning num has been fully played in a live
// game. Innings before the current one are done; the current inning is done
// only once the feed reports its "End" state.
func (lf *LiveFeedResponse) inningComplete(num int) bool {
	cur := lf.LiveData.Linescore.CurrentInning
	if num != cur {
		return num < cur
	}
	return lf.LiveData.Linescore.InningState == "End"
}
