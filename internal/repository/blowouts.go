package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"mlb_blowouts/checker/internal/models"
)

// BlowoutRepository handles classification database operations
type BlowoutRepository struct {
	db *Database
}

// Upsert inserts or updates a classification row keyed by game_id.
// Re-upserting identical data only touches updated_at; the row count stays
// at one per game.
func (r *BlowoutRepository) Upsert(ctx context.Context, rec *models.Classification) error {
	query := `
		INSERT INTO mlb_blowouts (
			game_id, date, away_team, home_team, away_score, home_score,
			status, through_6_lead, is_blowout, maintained_lead, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (game_id) DO UPDATE SET
			date = EXCLUDED.date,
			away_team = EXCLUDED.away_team,
			home_team = EXCLUDED.home_team,
			away_score = EXCLUDED.away_score,
			home_score = EXCLUDED.home_score,
			status = EXCLUDED.status,
			through_6_lead = EXCLUDED.through_6_lead,
			is_blowout = EXCLUDED.is_blowout,
			maintained_lead = EXCLUDED.maintained_lead,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		rec.GameID, rec.Date, rec.AwayTeam, rec.HomeTeam, rec.AwayScore, rec.HomeScore,
		string(rec.Status), rec.Through6Lead, rec.IsBlowout, rec.MaintainedLead,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert classification: %w", err)
	}

	log.Debug().
		Int64("game_id", rec.GameID).
		Str("away", rec.AwayTeam).
		Str("home", rec.HomeTeam).
		Bool("is_blowout", rec.IsBlowout).
		Msg("Classification upserted")

	return nil
}

const selectColumns = `
	game_id, date::text, away_team, home_team, away_score, home_score,
	status, through_6_lead, is_blowout, maintained_lead, created_at, updated_at
`

func scanClassification(row pgx.Row) (*models.Classification, error) {
	var rec models.Classification
	var status string
	err := row.Scan(
		&rec.GameID, &rec.Date, &rec.AwayTeam, &rec.HomeTeam, &rec.AwayScore, &rec.HomeScore,
		&status, &rec.Through6Lead, &rec.IsBlowout, &rec.MaintainedLead, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = models.Status(status)
	return &rec, nil
}

// GetByGameID retrieves a classification by its MLB gamePk
func (r *BlowoutRepository) GetByGameID(ctx context.Context, gameID int64) (*models.Classification, error) {
	query := `SELECT ` + selectColumns + ` FROM mlb_blowouts WHERE game_id = $1`

	rec, err := scanClassification(r.db.Pool.QueryRow(ctx, query, gameID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("classification not found: game_id=%d", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}

	return rec, nil
}

// ListByDateRange retrieves classifications between from and to inclusive
// (YYYY-MM-DD), optionally restricted to blowouts
func (r *BlowoutRepository) ListByDateRange(ctx context.Context, from, to string, blowoutsOnly bool) ([]*models.Classification, error) {
	query := `SELECT ` + selectColumns + ` FROM mlb_blowouts WHERE date >= $1 AND date <= $2`
	if blowoutsOnly {
		query += ` AND is_blowout`
	}
	query += ` ORDER BY date, game_id`

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	defer rows.Close()

	var recs []*models.Classification
	for rows.Next() {
		rec, err := scanClassification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classifications: %w", err)
	}

	log.Debug().Int("count", len(recs)).Msg("Retrieved classifications")
	return recs, nil
}

// Count returns the total number of classification rows
func (r *BlowoutRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM mlb_blowouts`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count classifications: %w", err)
	}

	return count, nil
}
