package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleJSON = `{
	"totalGames": 2,
	"dates": [{
		"date": "2024-06-15",
		"games": [
			{
				"gamePk": 745804,
				"gameDate": "2024-06-15T23:05:00Z",
				"officialDate": "2024-06-15",
				"status": {"abstractGameState": "Final", "codedGameState": "F", "detailedState": "Final"},
				"teams": {
					"away": {"team": {"id": 147, "name": "New York Yankees"}, "score": 8, "isWinner": true},
					"home": {"team": {"id": 111, "name": "Boston Red Sox"}, "score": 1, "isWinner": false}
				}
			},
			{
				"gamePk": 745805,
				"gameDate": "2024-06-16T01:10:00Z",
				"officialDate": "2024-06-15",
				"status": {"abstractGameState": "Preview", "codedGameState": "S", "detailedState": "Scheduled"},
				"teams": {
					"away": {"team": {"id": 119, "name": "Los Angeles Dodgers"}},
					"home": {"team": {"id": 137, "name": "San Francisco Giants"}}
				}
			}
		]
	}]
}`

func TestScheduleResponse_Decode(t *testing.T) {
	var schedule ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(scheduleJSON), &schedule))

	require.Len(t, schedule.Dates, 1)
	require.Len(t, schedule.Dates[0].Games, 2)

	final := schedule.Dates[0].Games[0]
	assert.Equal(t, int64(745804), final.GamePk)
	assert.Equal(t, "New York Yankees", final.Teams.Away.Team.Name)
	require.NotNil(t, final.Teams.Away.Score)
	assert.Equal(t, 8, *final.Teams.Away.Score)
	assert.Equal(t, StatusFinal, final.NormalizedStatus())

	upcoming := schedule.Dates[0].Games[1]
	assert.Nil(t, upcoming.Teams.Away.Score)
	assert.Equal(t, StatusScheduled, upcoming.NormalizedStatus())
}

func TestNormalizedStatus(t *testing.T) {
	cases := []struct {
		code string
		want Status
	}{
		{"S", StatusScheduled},
		{"P", StatusScheduled},
		{"I", StatusInProgress},
		{"F", StatusFinal},
		{"O", StatusFinal},
		{"D", StatusPostponed},
		{"C", StatusPostponed},
		{"U", StatusOther},
		{"", StatusOther},
	}

	for _, tc := range cases {
		var sg ScheduleGame
		sg.Status.CodedGameState = tc.code
		assert.Equal(t, tc.want, sg.NormalizedStatus(), "code %q", tc.code)
	}
}

const liveFeedJSON = `{
	"gamePk": 745804,
	"gameData": {"status": {"codedGameState": "I"}},
	"liveData": {
		"linescore": {
			"currentInning": 7,
			"inningState": "Top",
			"innings": [
				{"num": 1, "away": {"runs": 3}, "home": {"runs": 0}},
				{"num": 2, "away": {"runs": 0}, "home": {"runs": 1}},
				{"num": 3, "away": {"runs": 2}, "home": {"runs": 0}},
				{"num": 4, "away": {"runs": 0}, "home": {"runs": 0}},
				{"num": 5, "away": {"runs": 1}, "home": {"runs": 0}},
				{"num": 6, "away": {"runs": 0}, "home": {"runs": 0}},
				{"num": 7, "away": {"runs": 2}, "home": {}}
			]
		}
	}
}`

func TestLiveFeed_ToLinescore(t *testing.T) {
	var feed LiveFeedResponse
	require.NoError(t, json.Unmarshal([]byte(liveFeedJSON), &feed))

	ls := feed.ToLinescore()
	// The 7th is still being played, so only six innings are complete
	require.Len(t, ls, 6)
	assert.Equal(t, Inning{Away: 3, Home: 0}, ls[0])

	assert.Equal(t, 6, ls.AwayRunsThrough(6))
	assert.Equal(t, 1, ls.HomeRunsThrough(6))
	// Asking past the end is safe
	assert.Equal(t, 6, ls.AwayRunsThrough(12))
}

func TestLiveFeed_ToLinescore_MidSixthExcluded(t *testing.T) {
	// Snapshot taken during the 6th inning: the away half is in the feed but
	// the inning is not complete, so only five innings count
	const feed6th = `{
		"gamePk": 745806,
		"gameData": {"status": {"codedGameState": "I"}},
		"liveData": {
			"linescore": {
				"currentInning": 6,
				"inningState": "Middle",
				"innings": [
					{"num": 1, "away": {"runs": 2}, "home": {"runs": 0}},
					{"num": 2, "away": {"runs": 1}, "home": {"runs": 0}},
					{"num": 3, "away": {"runs": 0}, "home": {"runs": 0}},
					{"num": 4, "away": {"runs": 1}, "home": {"runs": 0}},
					{"num": 5, "away": {"runs": 1}, "home": {"runs": 0}},
					{"num": 6, "away": {"runs": 0}, "home": {}}
				]
			}
		}
	}`

	var feed LiveFeedResponse
	require.NoError(t, json.Unmarshal([]byte(feed6th), &feed))

	ls := feed.ToLinescore()
	assert.Len(t, ls, 5, "In-progress 6th inning must not count")

	// Once the bottom of the 6th ends the inning counts
	feed.LiveData.Linescore.InningState = "End"
	assert.Len(t, feed.ToLinescore(), 6)
}

func TestLiveFeed_ToLinescore_FinalIncludesAll(t *testing.T) {
	// Final game where the home team never batted in the 9th: every listed
	// inning counts, the unplayed half is zero runs
	const finalFeed = `{
		"gamePk": 745807,
		"gameData": {"status": {"codedGameState": "F"}},
		"liveData": {
			"linescore": {
				"currentInning": 9,
				"inningState": "Top",
				"innings": [
					{"num": 1, "away": {"runs": 0}, "home": {"runs": 2}},
					{"num": 2, "away": {"runs": 0}, "home": {"runs": 0}},
					{"num": 3, "away": {"runs": 1}, "home": {"runs": 0}},
					{"num": 4, "away": {"runs": 0}, "home": {"runs": 1}},
					{"num": 5, "away": {"runs": 0}, "home": {"runs": 0}},
					{"num": 6, "away": {"runs": 0}, "home": {"runs": 0}},
					{"num": 7, "away": {"runs": 0}, "home": {"runs": 0}},
					{"num": 8, "away": {"runs": 0}, "home": {"runs": 0}},
					{"num": 9, "away": {"runs": 0}, "home": {}}
				]
			}
		}
	}`

	var feed LiveFeedResponse
	require.NoError(t, json.Unmarshal([]byte(finalFeed), &feed))

	ls := feed.ToLinescore()
	require.Len(t, ls, 9)
	assert.Equal(t, Inning{Away: 0, Home: 0}, ls[8])
	assert.Equal(t, 1, ls.AwayRunsThrough(9))
	assert.Equal(t, 3, ls.HomeRunsThrough(9))
}

func TestMergeGame(t *testing.T) {
	var schedule ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(scheduleJSON), &schedule))

	sg := schedule.Dates[0].Games[0]
	ls := Linescore{{Away: 8, Home: 1}}

	game := MergeGame(&sg, "2024-06-15", ls)
	assert.Equal(t, int64(745804), game.GamePk)
	assert.Equal(t, "2024-06-15", game.Date)
	assert.Equal(t, StatusFinal, game.Status)
	assert.Equal(t, 8, game.AwayScore)
	assert.Equal(t, 1, game.HomeScore)
	assert.True(t, game.IsFinal())

	// Scores absent from the schedule stay zero
	upcoming := schedule.Dates[0].Games[1]
	pregame := MergeGame(&upcoming, "2024-06-15", nil)
	assert.Equal(t, 0, pregame.AwayScore)
	assert.False(t, pregame.IsFinal())
}
