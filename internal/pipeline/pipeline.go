// Package pipeline orchestrates one check run: fetch the day's schedule,
// classify each eligible game, and upsert the results. A single game's
// failure never aborts the rest of the batch; only a schedule fetch failure
// fails the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_blowouts/checker/internal/classifier"
	"mlb_blowouts/checker/internal/metrics"
	"mlb_blowouts/checker/internal/models"
)

// GameSource fetches schedule and linescore data for a date
type GameSource interface {
	FetchSchedule(ctx context.Context, date string) ([]models.ScheduleGame, error)
	FetchLinescore(ctx context.Context, gamePk int64) (models.Linescore, error)
}

// ClassificationStore persists classification records keyed by game_id
type ClassificationStore interface {
	Upsert(ctx context.Context, rec *models.Classification) error
}

// TerminalCache remembers games whose record reached its terminal state
type TerminalCache interface {
	IsTerminal(ctx context.Context, gamePk int64) (bool, error)
	MarkTerminal(ctx context.Context, gamePk int64, ttl time.Duration) error
}

// Summary reports what one run did
type Summary struct {
	Date       string
	Found      int
	Classified int
	Skipped    int
	Blowouts   int
	Failures   int
}

// Pipeline runs the fetch-classify-upsert cycle for one date at a time
type Pipeline struct {
	source      GameSource
	store       ClassificationStore
	cache       TerminalCache // optional
	threshold   int
	terminalTTL time.Duration
	out         io.Writer
}

// New creates a pipeline. The run threshold must be positive.
func New(source GameSource, store ClassificationStore, threshold int) *Pipeline {
	return &Pipeline{
		source:      source,
		store:       store,
		threshold:   threshold,
		terminalTTL: 48 * time.Hour,
		out:         os.Stdout,
	}
}

// SetCache enables the optional terminal-game cache
func (p *Pipeline) SetCache(cache TerminalCache, ttl time.Duration) {
	p.cache = cache
	if ttl > 0 {
		p.terminalTTL = ttl
	}
}

// SetOutput redirects the results table (used by tests)
func (p *Pipeline) SetOutput(w io.Writer) {
	p.out = w
}

// Run processes all games for one date (YYYY-MM-DD). It returns an error
// only when the schedule fetch fails; per-game failures are logged, counted,
// and isolated.
func (p *Pipeline) Run(ctx context.Context, date string) (*Summary, error) {
	start := time.Now()
	log.Info().Str("date", date).Int("threshold", p.threshold).Msg("Checking for blowouts")

	games, err := p.source.FetchSchedule(ctx, date)
	if err != nil {
		metrics.RecordError("pipeline", "fetch")
		return nil, fmt.Errorf("schedule fetch failed for %s: %w", date, err)
	}

	summary := &Summary{Date: date, Found: len(games)}
	if len(games) == 0 {
		log.Info().Str("date", date).Msg("No games scheduled")
		return summary, nil
	}

	log.Info().Int("count", len(games)).Msg("Found games to check")

	var results []*models.Classification
	for i := range games {
		sg := &games[i]
		rec := p.processGame(ctx, sg, date, summary)
		if rec != nil {
			results = append(results, rec)
		}
	}

	p.printResults(date, results)

	log.Info().
		Str("date", date).
		Int("found", summary.Found).
		Int("classified", summary.Classified).
		Int("skipped", summary.Skipped).
		Int("blowouts", summary.Blowouts).
		Int("failures", summary.Failures).
		Dur("duration", time.Since(start)).
		Msg("Check run complete")

	return summary, nil
}

// processGame handles a single game and returns its record, or nil when the
// game was skipped or failed
func (p *Pipeline) processGame(ctx context.Context, sg *models.ScheduleGame, date string, summary *Summary) *models.Classification {
	status := sg.NormalizedStatus()
	if !classifier.Eligible(status) {
		log.Debug().
			Int64("game_pk", sg.GamePk).
			Str("status", string(status)).
			Msg("Game not eligible for classification, skipping")
		metrics.RecordSkip("not_eligible")
		summary.Skipped++
		return nil
	}

	if p.cache != nil {
		terminal, err := p.cache.IsTerminal(ctx, sg.GamePk)
		if err != nil {
			// Cache trouble is never fatal
			log.Warn().Err(err).Int64("game_pk", sg.GamePk).Msg("Terminal cache check failed")
		} else if terminal {
			log.Debug().Int64("game_pk", sg.GamePk).Msg("Game already terminal, skipping")
			metrics.RecordSkip("terminal")
			summary.Skipped++
			return nil
		}
	}

	linescore, err := p.source.FetchLinescore(ctx, sg.GamePk)
	if err != nil {
		log.Warn().Err(err).Int64("game_pk", sg.GamePk).Msg("Failed to fetch linescore, skipping game")
		metrics.RecordError("pipeline", "linescore_fetch")
		summary.Failures++
		return nil
	}

	game := models.MergeGame(sg, date, linescore)

	rec, err := classifier.Classify(game, p.threshold)
	if err != nil {
		var integrity *classifier.DataIntegrityError
		if errors.As(err, &integrity) {
			log.Warn().
				Int64("game_pk", sg.GamePk).
				Str("reason", integrity.Reason).
				Msg("Game data failed integrity check, skipping game")
			metrics.RecordError("classifier", "data_integrity")
		} else {
			log.Warn().Err(err).Int64("game_pk", sg.GamePk).Msg("Classification failed, skipping game")
			metrics.RecordError("classifier", "other")
		}
		summary.Failures++
		return nil
	}

	if err := p.store.Upsert(ctx, rec); err != nil {
		log.Warn().Err(err).Int64("game_pk", sg.GamePk).Msg("Failed to persist classification, skipping game")
		metrics.RecordError("repository", "upsert")
		metrics.RecordUpsert("error")
		summary.Failures++
		return nil
	}
	metrics.RecordUpsert("ok")
	metrics.GamesClassified.Inc()
	summary.Classified++

	if rec.IsBlowout {
		metrics.BlowoutsDetected.Inc()
		summary.Blowouts++
	}

	if rec.Terminal() && p.cache != nil {
		if err := p.cache.MarkTerminal(ctx, sg.GamePk, p.terminalTTL); err != nil {
			log.Warn().Err(err).Int64("game_pk", sg.GamePk).Msg("Failed to mark game terminal")
		}
	}

	return rec
}

// printResults writes the per-game results table
func (p *Pipeline) printResults(date string, results []*models.Classification) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintf(p.out, "\nResults for %s:\n", date)
	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tSCORE\tSTATUS\tLEAD@6\tBLOWOUT")
	for _, rec := range results {
		lead := "-"
		if rec.Through6Lead.Valid {
			lead = fmt.Sprintf("%+d", rec.Through6Lead.Int32)
		}
		blowout := "no"
		if rec.IsBlowout {
			blowout = "YES"
		}
		fmt.Fprintf(w, "%s @ %s\t%d-%d\t%s\t%s\t%s\n",
			rec.AwayTeam, rec.HomeTeam, rec.AwayScore, rec.HomeScore, rec.Status, lead, blowout)
	}
	w.Flush()
}
