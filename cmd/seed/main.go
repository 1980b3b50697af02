package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/cache"
	"github.com/stemsi/cohorts-backend/internal/config"
	"github.com/stemsi/cohorts-backend/internal/database"
	"github.com/stemsi/cohorts-backend/internal/importer"
	"github.com/stemsi/cohorts-backend/internal/logger"
	"github.com/stemsi/cohorts-backend/internal/repository"
	"github.com/stemsi/cohorts-backend/internal/service"
)

// demoCohorts is loaded when no spreadsheet is given.
var demoCohorts = map[string][]string{
	"Web Development 1": {"Ada Lovelace", "Grace Hopper", "Alan Turing"},
	"Data Science 1":    {"Katherine Johnson", "Claude Shannon"},
	"UX Design 1":       {"Don Norman"},
}

func main() {
	var file string
	flag.StringVar(&file, "file", "", "Path to an .xlsx file with cohort,name rows (default: demo data)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Invalidate the server's cohort cache when it shares Redis with us.
	cohortCache := cache.NewNoop()
	if cfg.CacheEnabled() {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		cohortCache = cache.NewRedis(rdb)
	}

	store := repository.NewStore(pool)
	cohortService := service.NewCohortService(store, cohortCache, cfg.CacheTTL, log)
	studentService := service.NewStudentService(store)

	if file == "" {
		fmt.Println("=== Seeding demo cohorts ===")
		if err := seedDemo(ctx, cohortService, studentService, log, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Demo seed failed")
		}
		fmt.Println("=== Done ===")
		return
	}

	f, err := os.Open(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to open workbook")
	}
	defer f.Close()

	report, err := importer.NewExcelImporter(cohortService, studentService, log).Import(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Import failed")
	}

	fmt.Printf("Imported %d of %d rows into %d cohorts\n", report.Imported, report.Rows, report.Cohorts)
	for _, skipped := range report.Skipped {
		fmt.Printf("  row %d: %s\n", skipped.Row, skipped.Reason)
	}
}

// seedDemo loads demoCohorts. Re-runs only add the demo students a cohort is
// still missing.
func seedDemo(ctx context.Context, cohorts service.CohortService, students service.StudentService, log zerolog.Logger, out io.Writer) error {
	names := make([]string, 0, len(demoCohorts))
	for name := range demoCohorts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, cohortName := range names {
		cohort, err := cohorts.Ensure(ctx, cohortName)
		if err != nil {
			return fmt.Errorf("ensure cohort %q: %w", cohortName, err)
		}

		existing, err := cohorts.ListStudents(ctx, cohort.ID)
		if err != nil {
			return fmt.Errorf("list students of %q: %w", cohortName, err)
		}
		present := make(map[string]bool, len(existing))
		for _, s := range existing {
			present[s.Name] = true
		}

		added := 0
		for _, name := range demoCohorts[cohortName] {
			if present[name] {
				continue
			}
			if _, err := students.Create(ctx, name, cohort.ID); err != nil {
				var ve *apperror.ValidationError
				if errors.As(err, &ve) {
					log.Warn().Err(err).Str("student", name).Msg("Skipped student")
					continue
				}
				return fmt.Errorf("create student %q: %w", name, err)
			}
			added++
		}
		fmt.Fprintf(out, "%-20s %d added, %d already present\n", cohort.Name, added, len(demoCohorts[cohortName])-added)
	}
	return nil
}
