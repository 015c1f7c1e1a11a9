// Package classifier implements the through-6-innings blowout rule.
// Classification is a pure function of the fetched game state so it can be
// tested without any live collaborator.
package classifier

import (
	"fmt"

	"mlb_blowouts/checker/internal/models"
)

// decisionInning is the fixed point at which the lead is measured.
const decisionInning = 6

// DataIntegrityError marks a single game whose fetched data is internally
// inconsistent. Callers isolate it: skip the game, keep the batch going.
type DataIntegrityError struct {
	GamePk int64
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("game %d: inconsistent data: %s", e.GamePk, e.Reason)
}

// Eligible reports whether a game in the given state should be classified.
// Scheduled and postponed games produce no record at all.
func Eligible(status models.Status) bool {
	return status == models.StatusInProgress || status == models.StatusFinal
}

// Classify derives the blowout record for a game against the configured run
// threshold.
//
// Rules:
//   - Fewer than six innings played: lead and maintained flag stay NULL and
//     the game is never a blowout. Partial data is not a decision basis.
//   - The lead is away minus home runs through innings 1-6, frozen there.
//   - The threshold boundary is inclusive; a tie through six is never a
//     blowout.
//   - MaintainedLead is only set once the game is final: true when the side
//     leading through six also won, false when it did not (including the
//     tie-through-six case, where no lead existed to maintain). A final with
//     equal totals is non-decisive and leaves the flag NULL.
func Classify(game *models.Game, threshold int) (*models.Classification, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("run threshold must be positive, got %d", threshold)
	}
	if err := validate(game); err != nil {
		return nil, err
	}

	rec := &models.Classification{
		GameID:    game.GamePk,
		Date:      game.Date,
		AwayTeam:  game.AwayTeam,
		HomeTeam:  game.HomeTeam,
		AwayScore: game.AwayScore,
		HomeScore: game.HomeScore,
		Status:    game.Status,
	}

	if len(game.Linescore) < decisionInning {
		return rec, nil
	}

	lead := game.Linescore.AwayRunsThrough(decisionInning) - game.Linescore.HomeRunsThrough(decisionInning)
	rec.Through6Lead.Int32 = int32(lead)
	rec.Through6Lead.Valid = true

	abs := lead
	if abs < 0 {
		abs = -abs
	}
	rec.IsBlowout = lead != 0 && abs >= threshold

	if game.Status != models.StatusFinal {
		return rec, nil
	}

	switch {
	case game.AwayScore == game.HomeScore:
		// Non-decisive final (suspended/called game). Leave the flag NULL
		// rather than guess.
	case lead == 0:
		rec.MaintainedLead.Bool = false
		rec.MaintainedLead.Valid = true
	default:
		awayLed := lead > 0
		awayWon := game.AwayScore > game.HomeScore
		rec.MaintainedLead.Bool = awayLed == awayWon
		rec.MaintainedLead.Valid = true
	}

	return rec, nil
}

// validate rejects games whose linescore contradicts itself or the final
// totals reported by the schedule.
func validate(game *models.Game) error {
	for i, inning := range game.Linescore {
		if inning.Away < 0 || inning.Home < 0 {
			return &DataIntegrityError{
				GamePk: game.GamePk,
				Reason: fmt.Sprintf("negative run count in inning %d", i+1),
			}
		}
	}

	if game.Status == models.StatusFinal && len(game.Linescore) > 0 {
		awaySum := game.Linescore.AwayRunsThrough(len(game.Linescore))
		homeSum := game.Linescore.HomeRunsThrough(len(game.Linescore))
		if awaySum != game.AwayScore || homeSum != game.HomeScore {
			return &DataIntegrityError{
				GamePk: game.GamePk,
				Reason: fmt.Sprintf("linescore sums %d-%d contradict final score %d-%d",
					awaySum, homeSum, game.AwayScore, game.HomeScore),
			}
		}
	}

	return nil
}
