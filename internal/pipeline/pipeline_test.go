package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlb_blowouts/checker/internal/models"
)

// fakeSource serves canned schedule and linescore data
type fakeSource struct {
	games      []models.ScheduleGame
	linescores map[int64]models.Linescore
	fetchErr   error
	feedCalls  map[int64]int
}

func (f *fakeSource) FetchSchedule(ctx context.Context, date string) ([]models.ScheduleGame, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.games, nil
}

func (f *fakeSource) FetchLinescore(ctx context.Context, gamePk int64) (models.Linescore, error) {
	if f.feedCalls == nil {
		f.feedCalls = make(map[int64]int)
	}
	f.feedCalls[gamePk]++
	ls, ok := f.linescores[gamePk]
	if !ok {
		return nil, fmt.Errorf("no linescore for game %d", gamePk)
	}
	return ls, nil
}

// memStore is an in-memory ClassificationStore keyed by game_id
type memStore struct {
	rows      map[int64]models.Classification
	upserts   int
	upsertErr map[int64]error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]models.Classification)}
}

func (s *memStore) Upsert(ctx context.Context, rec *models.Classification) error {
	if err := s.upsertErr[rec.GameID]; err != nil {
		return err
	}
	s.upserts++
	rec.UpdatedAt = time.Now().UTC()
	s.rows[rec.GameID] = *rec
	return nil
}

// memCache is an in-memory TerminalCache
type memCache struct {
	terminal map[int64]bool
}

func newMemCache() *memCache {
	return &memCache{terminal: make(map[int64]bool)}
}

func (c *memCache) IsTerminal(ctx context.Context, gamePk int64) (bool, error) {
	return c.terminal[gamePk], nil
}

func (c *memCache) MarkTerminal(ctx context.Context, gamePk int64, ttl time.Duration) error {
	c.terminal[gamePk] = true
	return nil
}

func scheduleGame(gamePk int64, code string, awayScore, homeScore int) models.ScheduleGame {
	var sg models.ScheduleGame
	sg.GamePk = gamePk
	sg.Status.CodedGameState = code
	sg.Teams.Away.Team.Name = fmt.Sprintf("Away %d", gamePk)
	sg.Teams.Home.Team.Name = fmt.Sprintf("Home %d", gamePk)
	sg.Teams.Away.Score = &awayScore
	sg.Teams.Home.Score = &homeScore
	return sg
}

func blowoutLinescore() models.Linescore {
	// Away 8, home 1 through six; 10-3 final over nine
	return models.Linescore{
		{Away: 3, Home: 0}, {Away: 2, Home: 1}, {Away: 1, Home: 0},
		{Away: 0, Home: 0}, {Away: 2, Home: 0}, {Away: 0, Home: 0},
		{Away: 1, Home: 1}, {Away: 1, Home: 0}, {Away: 0, Home: 1},
	}
}

func closeLinescore() models.Linescore {
	// 4-3 final
	return models.Linescore{
		{Away: 1, Home: 0}, {Away: 0, Home: 1}, {Away: 1, Home: 0},
		{Away: 0, Home: 1}, {Away: 1, Home: 0}, {Away: 0, Home: 0},
		{Away: 0, Home: 1}, {Away: 1, Home: 0}, {Away: 0, Home: 0},
	}
}

func TestRun_BatchIsolation(t *testing.T) {
	// Three final games, one with a malformed linescore: the other two still
	// get classified and exactly one failure is reported
	source := &fakeSource{
		games: []models.ScheduleGame{
			scheduleGame(1, "F", 10, 3),
			scheduleGame(2, "F", 4, 3),
			scheduleGame(3, "F", 4, 3),
		},
		linescores: map[int64]models.Linescore{
			1: blowoutLinescore(),
			2: closeLinescore(),
			3: {{Away: -1, Home: 0}}, // negative run count
		},
	}
	store := newMemStore()

	pipe := New(source, store, 5)
	pipe.SetOutput(&bytes.Buffer{})

	summary, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err, "Per-game failures must not fail the run")

	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 2, summary.Classified)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, 1, summary.Blowouts)
	assert.Len(t, store.rows, 2)
	assert.NotContains(t, store.rows, int64(3))
}

func TestRun_ScheduleFetchFails(t *testing.T) {
	source := &fakeSource{fetchErr: fmt.Errorf("upstream unreachable")}
	store := newMemStore()

	pipe := New(source, store, 5)
	pipe.SetOutput(&bytes.Buffer{})

	_, err := pipe.Run(context.Background(), "2024-06-15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-06-15")
	assert.Empty(t, store.rows, "Nothing is persisted on a whole-run failure")
}

func TestRun_SkipsIneligibleGames(t *testing.T) {
	source := &fakeSource{
		games: []models.ScheduleGame{
			scheduleGame(1, "S", 0, 0), // scheduled
			scheduleGame(2, "D", 0, 0), // postponed
			scheduleGame(3, "F", 10, 3),
		},
		linescores: map[int64]models.Linescore{
			3: blowoutLinescore(),
		},
	}
	store := newMemStore()

	pipe := New(source, store, 5)
	pipe.SetOutput(&bytes.Buffer{})

	summary, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Classified)
	assert.Len(t, store.rows, 1, "Skipped games produce no record at all")
	// Ineligible games never hit the live feed
	assert.Zero(t, source.feedCalls[1])
	assert.Zero(t, source.feedCalls[2])
}

func TestRun_Idempotent(t *testing.T) {
	source := &fakeSource{
		games:      []models.ScheduleGame{scheduleGame(1, "F", 10, 3)},
		linescores: map[int64]models.Linescore{1: blowoutLinescore()},
	}
	store := newMemStore()

	pipe := New(source, store, 5)
	pipe.SetOutput(&bytes.Buffer{})

	_, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)
	first := store.rows[1]

	_, err = pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)
	second := store.rows[1]

	assert.Len(t, store.rows, 1, "Same game upserted twice keeps one row")
	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second, "Re-classifying identical data yields identical fields")
}

func TestRun_UpsertFailureIsolated(t *testing.T) {
	source := &fakeSource{
		games: []models.ScheduleGame{
			scheduleGame(1, "F", 10, 3),
			scheduleGame(2, "F", 4, 3),
		},
		linescores: map[int64]models.Linescore{
			1: blowoutLinescore(),
			2: closeLinescore(),
		},
	}
	store := newMemStore()
	store.upsertErr = map[int64]error{1: fmt.Errorf("connection reset")}

	pipe := New(source, store, 5)
	pipe.SetOutput(&bytes.Buffer{})

	summary, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, 1, summary.Classified)
	assert.Contains(t, store.rows, int64(2))
}

func TestRun_TerminalCacheSkipsFinalGames(t *testing.T) {
	source := &fakeSource{
		games:      []models.ScheduleGame{scheduleGame(1, "F", 10, 3)},
		linescores: map[int64]models.Linescore{1: blowoutLinescore()},
	}
	store := newMemStore()
	cache := newMemCache()

	pipe := New(source, store, 5)
	pipe.SetCache(cache, time.Hour)
	pipe.SetOutput(&bytes.Buffer{})

	_, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)
	assert.True(t, cache.terminal[1], "Final game should be marked terminal")
	assert.Equal(t, 1, source.feedCalls[1])
	assert.Equal(t, 1, store.upserts)

	// Second run: no refetch, no re-upsert
	summary, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, source.feedCalls[1])
	assert.Equal(t, 1, store.upserts)
}

func TestRun_InProgressGameNotTerminal(t *testing.T) {
	// In-progress games keep refreshing on later runs
	ls := models.Linescore{
		{Away: 1, Home: 0}, {Away: 0, Home: 1}, {Away: 1, Home: 0},
	}
	source := &fakeSource{
		games:      []models.ScheduleGame{scheduleGame(1, "I", 2, 1)},
		linescores: map[int64]models.Linescore{1: ls},
	}
	store := newMemStore()
	cache := newMemCache()

	pipe := New(source, store, 5)
	pipe.SetCache(cache, time.Hour)
	pipe.SetOutput(&bytes.Buffer{})

	_, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)
	assert.False(t, cache.terminal[1])

	rec := store.rows[1]
	assert.False(t, rec.Through6Lead.Valid, "Three innings is too early for a lead")
	assert.False(t, rec.IsBlowout)
	assert.False(t, rec.MaintainedLead.Valid)

	_, err = pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2, source.feedCalls[1], "Not-final games are refetched every run")
}

func TestRun_ResultsTable(t *testing.T) {
	source := &fakeSource{
		games:      []models.ScheduleGame{scheduleGame(1, "F", 10, 3)},
		linescores: map[int64]models.Linescore{1: blowoutLinescore()},
	}
	store := newMemStore()

	var out bytes.Buffer
	pipe := New(source, store, 5)
	pipe.SetOutput(&out)

	_, err := pipe.Run(context.Background(), "2024-06-15")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Away 1 @ Home 1")
	assert.Contains(t, out.String(), "YES")
	assert.Contains(t, out.String(), "+7")
}
