package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mlb_blowouts/checker/internal/cache"
	"mlb_blowouts/checker/internal/client"
	"mlb_blowouts/checker/internal/config"
	"mlb_blowouts/checker/internal/metrics"
	"mlb_blowouts/checker/internal/pipeline"
	"mlb_blowouts/checker/internal/repository"
	"mlb_blowouts/checker/internal/scheduler"
)

func main() {
	dateFlag := flag.String("date", "", "check a specific date (YYYY-MM-DD) and exit")
	onceFlag := flag.Bool("once", false, "check today and exit instead of running on schedule")
	flag.Parse()

	setupLogger()

	log.Info().Msg("Starting MLB blowout checker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("threshold", cfg.RunThreshold).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	statsClient := client.NewClient(cfg.MLBAPIBaseURL, cfg.MLBSportID, cfg.MLBAPITimeout)
	log.Info().Str("base_url", cfg.MLBAPIBaseURL).Msg("Stats API client initialized")

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

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	pipe := pipeline.New(statsClient, db.Blowouts, cfg.RunThreshold)

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			redisCache = rc
			defer redisCache.Close()
			pipe.SetCache(redisCache, cfg.TerminalTTL())
			log.Info().Msg("Redis cache connected")
		}
	}

	// One-shot mode: run for the requested date and exit
	if *dateFlag != "" || *onceFlag {
		date := *dateFlag
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			log.Error().Str("date", date).Msg("Invalid date, expected YYYY-MM-DD")
			os.Exit(2)
		}

		start := time.Now()
		summary, err := pipe.Run(ctx, date)
		if err != nil {
			metrics.RecordRun("cli", "error", time.Since(start).Seconds())
			log.Error().Err(err).Str("date", date).Msg("Check run failed")
			// os.Exit skips the deferred cleanup, close connections here
			if redisCache != nil {
				redisCache.Close()
			}
			db.Close()
			os.Exit(1)
		}
		metrics.RecordRun("cli", "success", time.Since(start).Seconds())
		log.Info().
			Int("classified", summary.Classified).
			Int("blowouts", summary.Blowouts).
			Int("failures", summary.Failures).
			Msg("Check run finished")
		return
	}

	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg, pipe)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run immediately on startup, then wait for the schedule
	date := time.Now().UTC().Format("2006-01-02")
	start := time.Now()
	if summary, err := pipe.Run(ctx, date); err != nil {
		metrics.RecordRun("startup", "error", time.Since(start).Seconds())
		log.Error().Err(err).Str("date", date).Msg("Startup check run failed, continuing on schedule")
	} else {
		metrics.RecordRun("startup", "success", time.Since(start).Seconds())
		log.Info().
			Int("classified", summary.Classified).
			Int("blowouts", summary.Blowouts).
			Msg("Startup check run finished")
	}

	log.Info().Str("schedule", cfg.ScheduleCron).Msg("Blowout checker running")

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Checker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
