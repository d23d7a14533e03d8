package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/config"
	"github.com/vac-rating-engine/internal/domain"
	"github.com/vac-rating-engine/internal/history"
	"github.com/vac-rating-engine/internal/rating"
	"github.com/vac-rating-engine/internal/service"
	"github.com/vac-rating-engine/internal/store"
)

func main() {
	caseFile := flag.String("case", "", "path to a case input JSON file to assess")
	dataPath := flag.String("data", "", "path to the reference dataset (overrides configuration)")
	flag.Parse()

	configManager, err := config.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := configManager.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
		os.Exit(1)
	}

	cfg := configManager.GetConfig()
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}

	logger := newLogger(cfg.Logging)

	refStore := store.New(logger)
	if err := refStore.LoadFile(cfg.Data.Path); err != nil {
		logger.WithError(err).Fatal("Failed to load reference data")
	}

	report := refStore.Validate()
	if !report.Valid {
		logger.WithField("errors", report.Errors).Fatal("Reference data failed validation")
	}
	for _, warning := range report.Warnings {
		logger.Warn(warning)
	}
	logger.WithFields(logrus.Fields{
		"chapters":      report.Stats.TotalChapters,
		"conditions":    report.Stats.TotalConditions,
		"rating_tables": report.Stats.TotalRatingTables,
	}).Info("Reference data loaded")

	resolver := service.NewCachedConditionResolver(refStore, service.ResolverConfig{
		Threshold: cfg.Matching.Threshold,
		CacheSize: cfg.Cache.MaxEntries,
		CacheTTL:  cfg.Cache.TTL,
	}, logger)

	var repo domain.AssessmentRepository
	if cfg.History.Enabled {
		repo, err = history.NewSQLiteStore(cfg.History.DSN)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open assessment history store")
		}
		defer repo.Close()
	}

	assessor := rating.NewAssessor(resolver, repo, logger)

	if *caseFile == "" {
		logger.Info("No case file supplied; reference data is ready. Use -case to assess a case.")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := assessCaseFile(ctx, assessor, *caseFile); err != nil {
		logger.WithError(err).Fatal("Case assessment failed")
	}
}

// assessCaseFile reads a case input document, assesses it, and prints the
// assessment as indented JSON to stdout.
func assessCaseFile(ctx context.Context, assessor *rating.Assessor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read case file: %w", err)
	}

	input := &domain.CaseInput{}
	if err := json.Unmarshal(data, input); err != nil {
		return fmt.Errorf("failed to parse case file: %w", err)
	}

	assessment, err := assessor.AssessCase(ctx, input)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(assessment)
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
