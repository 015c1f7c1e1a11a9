package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS mlb_blowouts (
	game_id         BIGINT PRIMARY KEY,
	date            DATE NOT NULL,
	away_team       TEXT NOT NULL,
	home_team       TEXT NOT NULL,
	away_score      INTEGER NOT NULL DEFAULT 0,
	home_score      INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	through_6_lead  INTEGER,
	is_blowout      BOOLEAN NOT NULL DEFAULT FALSE,
	maintained_lead BOOLEAN,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_mlb_blowouts_date ON mlb_blowouts (date);
CREATE INDEX IF NOT EXISTS idx_mlb_blowouts_is_blowout ON mlb_blowouts (is_blowout) WHERE is_blowout;
`

// EnsureSchema creates the mlb_blowouts table and its indexes if absent.
// Safe to run on every startup.
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Debug().Msg("Schema ensured")
	return nil
}
