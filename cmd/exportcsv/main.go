// Command exportcsv writes stored classification rows as CSV for a date
// range, optionally restricted to blowouts.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_blowouts/checker/internal/config"
	"mlb_blowouts/checker/internal/report"
	"mlb_blowouts/checker/internal/repository"
)

func main() {
	today := time.Now().UTC().Format("2006-01-02")
	fromFlag := flag.String("from", today, "start date (YYYY-MM-DD), inclusive")
	toFlag := flag.String("to", today, "end date (YYYY-MM-DD), inclusive")
	blowoutsOnly := flag.Bool("blowouts-only", false, "export only games classified as blowouts")
	outFlag := flag.String("out", "", "output file path (default stdout)")
	flag.Parse()

	for _, d := range []string{*fromFlag, *toFlag} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			log.Fatal().Str("date", d).Msg("Invalid date, expected YYYY-MM-DD")
		}
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	recs, err := db.Blowouts.ListByDateRange(ctx, *fromFlag, *toFlag, *blowoutsOnly)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list classifications")
	}

	var out io.Writer = os.Stdout
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			log.Fatal().Err(err).Str("path", *outFlag).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := report.WriteCSV(out, recs); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}

	log.Info().
		Int("rows", len(recs)).
		Str("from", *fromFlag).
		Str("to", *toFlag).
		Bool("blowouts_only", *blowoutsOnly).
		Msg("Export complete")
}
