// Package report renders stored classification rows as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"mlb_blowouts/checker/internal/models"
)

var header = []string{
	"game_id", "date", "away_team", "home_team", "away_score", "home_score",
	"status", "through_6_lead", "is_blowout", "maintained_lead", "updated_at",
}

// WriteCSV writes a header row plus one row per classification. NULL fields
// render as empty cells.
func WriteCSV(w io.Writer, recs []*models.Classification) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range recs {
		lead := ""
		if rec.Through6Lead.Valid {
			lead = strconv.Itoa(int(rec.Through6Lead.Int32))
		}
		maintained := ""
		if rec.MaintainedLead.Valid {
			maintained = strconv.FormatBool(rec.MaintainedLead.Bool)
		}

		row := []string{
			strconv.FormatInt(rec.GameID, 10),
			rec.Date,
			rec.AwayTeam,
			rec.HomeTeam,
			strconv.Itoa(rec.AwayScore),
			strconv.Itoa(rec.HomeScore),
			string(rec.Status),
			lead,
			strconv.FormatBool(rec.IsBlowout),
			maintained,
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for game %d: %w", rec.GameID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
